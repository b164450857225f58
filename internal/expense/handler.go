package expense

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"divvy/internal/enrich"
	"divvy/internal/expense/split"
	"divvy/pkg/response"
)

const maxReceiptSize = 10 << 20 // 10 MB

// Handler handles HTTP requests for expense operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Get("/group/{groupId}", h.ListByGroup)
	r.Post("/shares/{shareId}/settle", h.SettleShare)

	r.Post("/parse", h.ParseTranscript)
	r.Post("/scan", h.ScanReceipt)

	return r
}

// Create handles POST /expenses
// @Summary      Create an expense
// @Description  Computes shares with the requested split mode and stores the expense atomically
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        expense body CreateExpenseRequest true "Expense to create"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), &req)
	if err != nil {
		var vErr *split.ValidationError
		switch {
		case errors.As(err, &vErr):
			response.BadRequest(w, vErr.Error())
		case errors.Is(err, ErrEmptyDescription),
			errors.Is(err, split.ErrUnknownMode),
			errors.Is(err, ErrUnknownPayer),
			errors.Is(err, ErrUnknownParticipant):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create expense")
		}
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse())
}

// Get handles GET /expenses/{id}
// @Summary      Get an expense with its items and shares
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.ListByGroup(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, e.ToResponse())
	}

	response.JSON(w, http.StatusOK, resp)
}

// SettleShare handles POST /expenses/shares/{shareId}/settle
// @Summary      Settle a single expense share
// @Description  Fully settled expenses are removed afterwards
// @Tags         expenses
// @Produce      json
// @Param        shareId path string true "Share ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /expenses/shares/{shareId}/settle [post]
func (h *Handler) SettleShare(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SettleShare(r.Context(), chi.URLParam(r, "shareId")); err != nil {
		switch {
		case errors.Is(err, ErrShareNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrShareAlreadySettled):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to settle share")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"settled": true})
}

// ParseTranscript handles POST /expenses/parse
// @Summary      Parse a spoken expense into an itemized draft
// @Description  Resolves claimant names to member ids; the draft is reviewed client-side before submission
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        transcript body ParseTranscriptRequest true "Transcript to parse"
// @Success      200 {object} response.APIResponse{data=ExpenseDraftResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /expenses/parse [post]
func (h *Handler) ParseTranscript(w http.ResponseWriter, r *http.Request) {
	var req ParseTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	draft, err := h.service.ParseTranscript(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEnrichmentDisabled):
			response.ServiceUnavailable(w, err.Error())
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, enrich.ErrUnknownName):
			response.BadRequest(w, err.Error())
		default:
			response.BadRequest(w, err.Error())
		}
		return
	}

	response.JSON(w, http.StatusOK, draft)
}

// ScanReceipt handles POST /expenses/scan
// @Summary      Extract totals from a receipt image
// @Tags         expenses
// @Accept       multipart/form-data
// @Produce      json
// @Param        image formData file true "Receipt image"
// @Success      200 {object} response.APIResponse{data=ReceiptCandidateResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /expenses/scan [post]
func (h *Handler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "Missing image file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptSize))
	if err != nil {
		response.InternalError(w, "Failed to read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	candidate, err := h.service.ScanReceipt(r.Context(), image, mimeType)
	if err != nil {
		if errors.Is(err, ErrEnrichmentDisabled) {
			response.ServiceUnavailable(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to scan receipt")
		return
	}

	response.JSON(w, http.StatusOK, candidate)
}
