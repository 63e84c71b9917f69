package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/events-api/internal/api/handler/v1/request"
	"github.com/campushub/events-api/internal/api/handler/v1/response"
	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, in service.RegisterInput) (service.RegisterResult, error)
	RegisterBatch(ctx context.Context, userID uint, userType domain.Role, method domain.PaymentMethod, items []service.BatchItem) (service.BatchResult, error)
	Cancel(ctx context.Context, registrationID uint) (service.CancelResult, error)
	MarkAttended(ctx context.Context, registrationID uint) (domain.Registration, error)
	GetUserRegistrations(ctx context.Context, userID uint) ([]domain.Registration, error)
}

type RegistrationHandler struct {
	svc  RegistrationService
	uSvc UserService
}

func NewRegistrationHandler(svc RegistrationService, uSvc UserService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register the authenticated user for an event
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body       request.RegisterRequest true "request body"
// @Success      201      {object}   response.RegistrationResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      402      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /registrations [post]
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Register(ctx.Request.Context(), service.RegisterInput{
		UserID:             user.ID,
		UserType:           user.Role,
		EventID:            req.EventID,
		EventType:          domain.EventType(req.EventType),
		PaymentMethod:      domain.PaymentMethod(req.PaymentMethod),
		ExternalPaymentRef: req.ExternalPaymentRef,
	})
	if err != nil {
		renderRegistrationErr(ctx, req.EventID, err)
		return
	}

	ctx.JSON(http.StatusCreated, response.RegistrationResponse{
		Registration:  result.Registration,
		WalletBalance: result.WalletBalance,
		CalendarSync:  result.CalendarSync,
	})
}

// HandleRegisterBatch godoc
// @Summary      Register the authenticated user for several events at once
// @Description  Items are processed independently; wallet batches settle with a single aggregate debit.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body       request.BatchRegisterRequest true "request body"
// @Success      207      {object}   response.BatchRegistrationResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      402      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /registrations/batch [post]
func (h *RegistrationHandler) HandleRegisterBatch(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BatchRegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	items := make([]service.BatchItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.BatchItem{
			EventID:            item.EventID,
			EventType:          domain.EventType(item.EventType),
			ExternalPaymentRef: item.ExternalPaymentRef,
		}
	}

	result, err := h.svc.RegisterBatch(ctx.Request.Context(), user.ID, user.Role, domain.PaymentMethod(req.PaymentMethod), items)
	if err != nil && !errors.Is(err, service.ErrInsufficientBalance) {
		err = fmt.Errorf("v1.HandleRegisterBatch -> h.svc.RegisterBatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	resp := response.BatchRegistrationResponse{
		Items:     make([]response.BatchItemResponse, len(result.Items)),
		TotalPaid: result.TotalPaid,
	}
	for i, item := range result.Items {
		resp.Items[i] = response.BatchItemResponse{
			EventID:        item.EventID,
			RegistrationID: item.RegistrationID,
		}
		if item.Err != nil {
			resp.Items[i].Status = "failed"
			resp.Items[i].Error = item.Err.Error()
		} else {
			resp.Items[i].Status = "registered"
		}
	}

	if errors.Is(err, service.ErrInsufficientBalance) {
		// The whole wallet settlement rolled back.
		ctx.JSON(http.StatusPaymentRequired, resp)
		return
	}

	ctx.JSON(http.StatusMultiStatus, resp)
}

// HandleCancel godoc
// @Summary      Cancel a registration
// @Description  Allowed up to 14 days before the event starts. Paid amounts are refunded to the wallet once.
// @Tags         registrations
// @Produce      json
// @Param        registrationID  path  int true "registration ID"
// @Success      200      {object}   response.CancellationResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /registrations/{registrationID}/cancel [post]
func (h *RegistrationHandler) HandleCancel(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	registrationID, respErr := h.resolveOwnRegistration(ctx, user)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	result, err := h.svc.Cancel(ctx.Request.Context(), registrationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "registration ID", registrationID))
		case errors.Is(err, service.ErrAlreadyCancelled),
			errors.Is(err, service.ErrInvalidStatusTransition),
			errors.Is(err, service.ErrCancellationWindowClosed):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCancel -> h.svc.Cancel -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.CancellationResponse{
		Registration:   result.Registration,
		RefundedAmount: result.RefundedAmount,
		WalletBalance:  result.WalletBalance,
	})
}

// HandleUpdateStatus godoc
// @Summary      Update a registration's status
// @Description  Marks a registration as attended. Staff, professor and admin only.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        registrationID  path  int                          true "registration ID"
// @Param        request         body  request.UpdateStatusRequest  true "request body"
// @Success      200      {object}   domain.Registration
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /registrations/{registrationID}/status [patch]
func (h *RegistrationHandler) HandleUpdateStatus(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role == domain.RoleStudent {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v may not update registration statuses", user.ID)))
		return
	}

	registrationID, err := strconv.ParseUint(ctx.Param("registrationID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid registration ID: %w", err)))
		return
	}

	var req request.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if domain.RegistrationStatus(req.Status) != domain.StatusAttended {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("status can only be set to %q here", domain.StatusAttended)))
		return
	}

	reg, err := h.svc.MarkAttended(ctx.Request.Context(), uint(registrationID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "ID", registrationID))
		case errors.Is(err, service.ErrInvalidStatusTransition):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateStatus -> h.svc.MarkAttended -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, reg)
}

// HandleListOwnRegistrations godoc
// @Summary      List the authenticated user's registrations
// @Tags         registrations
// @Produce      json
// @Success      200      {array}    domain.Registration
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /registrations [get]
func (h *RegistrationHandler) HandleListOwnRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	regs, err := h.svc.GetUserRegistrations(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListOwnRegistrations -> h.svc.GetUserRegistrations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// resolveOwnRegistration parses the path ID and checks the registration
// belongs to the caller. Admins may act on any registration.
func (h *RegistrationHandler) resolveOwnRegistration(ctx *gin.Context, user domain.User) (uint, *response.Err) {
	registrationID, err := strconv.ParseUint(ctx.Param("registrationID"), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid registration ID: %w", err))
	}

	if user.Role == domain.RoleAdmin {
		return uint(registrationID), nil
	}

	regs, err := h.svc.GetUserRegistrations(ctx.Request.Context(), user.ID)
	if err != nil {
		return 0, response.ErrInternalServerError(fmt.Errorf("resolveOwnRegistration -> %w", err))
	}

	for i := range regs {
		if regs[i].ID == uint(registrationID) {
			return uint(registrationID), nil
		}
	}

	return 0, response.ErrNotFound("registration", "ID", registrationID)
}

func renderRegistrationErr(ctx *gin.Context, eventID uint, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
	case errors.Is(err, service.ErrForbiddenRole):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrDuplicateRegistration),
		errors.Is(err, service.ErrCapacityExceeded):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrPaymentNotCompleted):
		response.RenderErr(ctx, response.ErrPaymentRequired(err))
	case errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrEventAlreadyStarted),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
