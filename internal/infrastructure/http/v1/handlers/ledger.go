package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txscope/internal/core/apperror"
	"txscope/internal/domain/ledger"
	"txscope/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves ledger endpoints. Mutating routes run inside the
// request scope opened by middleware.SessionScope; the service joins that
// scope, so the commit happens once, after the handler chain.
type LedgerHandler struct {
	*BaseHandler
	svc *ledger.Service
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(svc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: NewBaseHandler(), svc: svc}
}

// Record creates one ledger entry.
// POST /api/v1/entries
func (h *LedgerHandler) Record(c *gin.Context) {
	var req dto.RecordEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("amount", req.Amount))
		return
	}

	entry, err := h.svc.Record(c.Request.Context(), ledger.RecordInput{
		Account:   req.Account,
		Amount:    amount,
		Reference: req.Reference,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromEntry(*entry))
}

// Transfer moves an amount between two accounts atomically.
// POST /api/v1/transfers
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("amount", req.Amount))
		return
	}

	entries, err := h.svc.Transfer(c.Request.Context(), req.From, req.To, amount, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromEntries(entries))
}

// Get returns one ledger entry by id.
// GET /api/v1/entries/:id
func (h *LedgerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entry id").WithDetail("id", c.Param("id")))
		return
	}

	entry, err := h.svc.Entry(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(*entry))
}

// List returns an account's entries, newest first.
// GET /api/v1/accounts/:account/entries
func (h *LedgerHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	account := c.Param("account")
	entries, total, err := h.svc.Entries(c.Request.Context(), account, page.PageSize, page.Offset())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse[dto.EntryResponse]{
		Data:       dto.FromEntries(entries),
		Pagination: dto.NewPaginationResponse(page.Page, page.PageSize, total),
	})
}

// Balance returns the sum of an account's entries.
// GET /api/v1/accounts/:account/balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	account := c.Param("account")
	balance, err := h.svc.Balance(c.Request.Context(), account)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BalanceResponse{Account: account, Balance: balance})
}
