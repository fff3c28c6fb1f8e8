package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	chemicalapp "github.com/chemstock/backend/internal/application/chemical"
	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/infrastructure/cache"
	"github.com/chemstock/backend/internal/infrastructure/logger"
	"github.com/chemstock/backend/internal/interfaces/http/middleware"
)

// idempotencyTTL is how long an allocation idempotency key stays consumed.
const idempotencyTTL = 24 * time.Hour

// ChemicalHandler exposes the intake, allocation and reporting endpoints.
type ChemicalHandler struct {
	BaseHandler
	intake      *chemicalapp.IntakeService
	allocation  *chemicalapp.AllocationService
	reports     *chemicalapp.ReportService
	idempotency cache.IdempotencyStore
	logger      *zap.Logger
}

// NewChemicalHandler creates a chemical handler. The idempotency store may be
// nil, in which case allocation requests are never deduplicated.
func NewChemicalHandler(
	intake *chemicalapp.IntakeService,
	allocation *chemicalapp.AllocationService,
	reports *chemicalapp.ReportService,
	idempotency cache.IdempotencyStore,
	log *zap.Logger,
) *ChemicalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChemicalHandler{
		intake:      intake,
		allocation:  allocation,
		reports:     reports,
		idempotency: idempotency,
		logger:      log,
	}
}

// Intake registers a batch of chemicals into the central repository.
// POST /chemicals/intake
func (h *ChemicalHandler) Intake(c *gin.Context) {
	var req chemicalapp.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.intake.Intake(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Allocate moves a batch of chemicals from central stock to one lab. The
// optional X-Idempotency-Key header deduplicates replayed requests: the key
// is consumed atomically before the batch runs, so a replay gets a 409
// instead of moving stock twice.
// POST /chemicals/allocations
func (h *ChemicalHandler) Allocate(c *gin.Context) {
	var req chemicalapp.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ctx := c.Request.Context()

	if key := c.GetHeader("X-Idempotency-Key"); key != "" && h.idempotency != nil {
		fresh, err := h.idempotency.MarkProcessed(ctx, key, idempotencyTTL)
		if err != nil {
			// Dedup is best-effort; a dead store must not block allocations.
			logger.L(ctx).Warn("idempotency store unavailable, processing without dedup",
				zap.Error(err))
		} else if !fresh {
			h.Conflict(c, "Allocation request with this idempotency key was already processed")
			return
		}
	}

	resp, err := h.allocation.Allocate(ctx, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMasters returns the whole chemical catalog.
// GET /chemicals/masters
func (h *ChemicalHandler) ListMasters(c *gin.Context) {
	records, err := h.reports.ListMasters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// CentralStock returns the central repository's live rows.
// GET /chemicals/stock/central
func (h *ChemicalHandler) CentralStock(c *gin.Context) {
	stocks, err := h.reports.CentralStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stocks)
}

// AllocationForm returns the simplified central feed for allocation forms.
// GET /chemicals/stock/central/allocation-form
func (h *ChemicalHandler) AllocationForm(c *gin.Context) {
	items, err := h.reports.AllocationForm(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// LabStock returns one lab's live rows.
// GET /chemicals/stock/labs/:lab_id
func (h *ChemicalHandler) LabStock(c *gin.Context) {
	lab := chemical.PoolID(c.Param("lab_id"))

	stocks, err := h.reports.LabStock(c.Request.Context(), lab)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stocks)
}

// LabMasters returns the catalog records present in one lab.
// GET /chemicals/labs/:lab_id/masters
func (h *ChemicalHandler) LabMasters(c *gin.Context) {
	lab := chemical.PoolID(c.Param("lab_id"))

	records, err := h.reports.LabMasters(c.Request.Context(), lab)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// ListTransactions returns the audit trail, newest first.
// GET /chemicals/transactions
func (h *ChemicalHandler) ListTransactions(c *gin.Context) {
	txs, err := h.reports.ListTransactions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txs)
}

// Distribution returns the per-pool distribution summary.
// GET /chemicals/distribution
func (h *ChemicalHandler) Distribution(c *gin.Context) {
	dist, err := h.reports.Distribution(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dist)
}
