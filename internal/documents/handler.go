package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mohamedwhb/postenwerk/internal/catalog"
	"github.com/mohamedwhb/postenwerk/internal/ledger"
	"github.com/mohamedwhb/postenwerk/internal/platform/httpx"
	"github.com/mohamedwhb/postenwerk/internal/shared"
)

// Handler manages document endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/finalize", h.finalize)

	r.Post("/{id}/items", h.addItem)
	r.Post("/{id}/items/batch", h.addBatch)
	r.Post("/{id}/items/renumber", h.renumber)
	r.Patch("/{id}/items/{itemID}", h.updateItemField)
	r.Post("/{id}/items/{itemID}/bind", h.bindProduct)
	r.Post("/{id}/items/{itemID}/move", h.moveItem)
	r.Delete("/{id}/items/{itemID}", h.removeItem)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListDocumentsRequest{
		Search: q.Get("search"),
		Limit:  intParam(q.Get("limit"), 50),
		Offset: intParam(q.Get("offset"), 0),
	}
	if v := q.Get("kind"); v != "" {
		kind := DocumentKind(v)
		if !kind.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown document kind "+strconv.Quote(v))
			return
		}
		req.Kind = &kind
	}
	if v := q.Get("status"); v != "" {
		status := DocumentStatus(v)
		if !status.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown document status "+strconv.Quote(v))
			return
		}
		req.Status = &status
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	docs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"documents":  docs,
		"pagination": shared.NewPagination(req.Limit, req.Offset, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !req.Kind.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown document kind "+strconv.Quote(string(req.Kind)))
		return
	}

	doc, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.UpdateHeader(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, "update document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	doc, err := h.service.Finalize(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "finalize document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// addItem appends either a blank row or, when the body names a product,
// a row bound to that catalog product.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req addItemRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
	}

	var doc *Document
	if req.ProductID != nil {
		doc, err = h.service.AddProductItem(r.Context(), id, *req.ProductID)
	} else {
		doc, err = h.service.AddItem(r.Context(), id)
	}
	if err != nil {
		h.respondServiceError(w, "add item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) addBatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var req batchTextRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.AddBatchText(r.Context(), id, req.Text)
	if err != nil {
		var parseErr *ledger.ParseError
		if errors.As(err, &parseErr) {
			httpx.JSON(w, http.StatusBadRequest, map[string]any{
				"title":  "Batch Parse Failed",
				"status": http.StatusBadRequest,
				"lines":  parseErr.Lines,
			})
			return
		}
		h.respondServiceError(w, "add batch items", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) renumber(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	doc, err := h.service.RenumberItems(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "renumber items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) updateItemField(w http.ResponseWriter, r *http.Request) {
	docID, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	var req itemFieldRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cmd, err := req.command(itemID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.UpdateItemField(r.Context(), docID, cmd)
	if err != nil {
		h.respondServiceError(w, "update item field", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) bindProduct(w http.ResponseWriter, r *http.Request) {
	docID, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	var req bindProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.BindItemProduct(r.Context(), docID, itemID, req.ProductID)
	if err != nil {
		h.respondServiceError(w, "bind product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) moveItem(w http.ResponseWriter, r *http.Request) {
	docID, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	var req moveItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.MoveItem(r.Context(), docID, itemID, req.Direction)
	if err != nil {
		h.respondServiceError(w, "move item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	docID, itemID, ok := h.itemParams(w, r)
	if !ok {
		return
	}
	doc, err := h.service.RemoveItem(r.Context(), docID, itemID)
	if err != nil {
		h.respondServiceError(w, "remove item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) itemParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	docID, err := idParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return 0, 0, false
	}
	itemID, err := idParam(r, "itemID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Item ID", err.Error())
		return 0, 0, false
	}
	return docID, itemID, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrFinalized):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
