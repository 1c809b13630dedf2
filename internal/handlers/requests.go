package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/policy"
	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// RequestHandler exposes the three request entities and their approval
// operations.
type RequestHandler struct {
	db          *gorm.DB
	workflow    *workflow.Service
	authHandler *auth.AuthHandler
}

func NewRequestHandler(db *gorm.DB, wf *workflow.Service, authHandler *auth.AuthHandler) *RequestHandler {
	return &RequestHandler{db: db, workflow: wf, authHandler: authHandler}
}

type ApprovalOutcome struct {
	Status   string   `json:"status"`
	UserID   uint     `json:"user_id,omitempty"`
	LodgeID  uint     `json:"lodge_id,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func outcomeOf(result workflow.Result) ApprovalOutcome {
	return ApprovalOutcome{
		Status:   result.Status.String(),
		UserID:   result.UserID,
		LodgeID:  result.LodgeID,
		Warnings: result.Warnings,
	}
}

func approvalError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrAlreadyApproved):
		return huma.Error409Conflict("Request already approved")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return huma.Error404NotFound("Request not found")
	default:
		return huma.Error500InternalServerError("Approval failed: " + err.Error())
	}
}

// --- Store requests ---

type StoreRequestResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Number    string    `json:"number"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

func storeRequestResponse(r models.StoreRequest) StoreRequestResponse {
	return StoreRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		City:      r.City,
		Number:    r.Number,
		Approved:  r.Approved,
		CreatedAt: r.CreatedAt,
	}
}

type CreateStoreRequestInput struct {
	auth.AuthInput
	Body struct {
		Name   string `json:"name" required:"true" doc:"Full lodge name, e.g. LOJA FULANO DE TAL Nº 0000"`
		City   string `json:"city" required:"true"`
		Number string `json:"number,omitempty"`
	}
}

type StoreRequestOutput struct {
	Body StoreRequestResponse
}

func (h *RequestHandler) HandleCreateStoreRequest(ctx context.Context, input *CreateStoreRequestInput) (*StoreRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if !models.ValidCity(input.Body.City) {
		return nil, huma.Error422UnprocessableEntity("Unknown city: " + input.Body.City)
	}

	req := models.StoreRequest{
		UserID: actor.ID,
		Name:   input.Body.Name,
		City:   input.Body.City,
		Number: input.Body.Number,
	}
	if err := h.db.Create(&req).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create store request")
	}

	h.workflow.NotifyStoreRequestCreated(ctx, &req)

	return &StoreRequestOutput{Body: storeRequestResponse(req)}, nil
}

type ListStoreRequestsInput struct {
	auth.AuthInput
}

type ListStoreRequestsOutput struct {
	Body []StoreRequestResponse
}

func (h *RequestHandler) HandleListStoreRequests(ctx context.Context, input *ListStoreRequestsInput) (*ListStoreRequestsOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	query := h.db.Model(&models.StoreRequest{})
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}

	var requests []models.StoreRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list store requests")
	}

	res := &ListStoreRequestsOutput{Body: make([]StoreRequestResponse, 0, len(requests))}
	for _, r := range requests {
		res.Body = append(res.Body, storeRequestResponse(r))
	}
	return res, nil
}

func (h *RequestHandler) findStoreRequest(actor auth.Actor, id uint) (*models.StoreRequest, error) {
	var req models.StoreRequest
	query := h.db.Where("id = ?", id)
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}
	if err := query.First(&req).Error; err != nil {
		return nil, huma.Error404NotFound("Store request not found")
	}
	return &req, nil
}

type GetStoreRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *RequestHandler) HandleGetStoreRequest(ctx context.Context, input *GetStoreRequestInput) (*StoreRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	req, err := h.findStoreRequest(actor, input.ID)
	if err != nil {
		return nil, err
	}
	return &StoreRequestOutput{Body: storeRequestResponse(*req)}, nil
}

type UpdateStoreRequestInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Name   *string `json:"name,omitempty"`
		City   *string `json:"city,omitempty"`
		Number *string `json:"number,omitempty"`
		UserID *uint   `json:"user_id,omitempty"`
	}
}

func (h *RequestHandler) HandleUpdateStoreRequest(ctx context.Context, input *UpdateStoreRequestInput) (*StoreRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	req, err := h.findStoreRequest(actor, input.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Body.Name != nil {
		fields["name"] = *input.Body.Name
	}
	if input.Body.City != nil {
		if !models.ValidCity(*input.Body.City) {
			return nil, huma.Error422UnprocessableEntity("Unknown city: " + *input.Body.City)
		}
		fields["city"] = *input.Body.City
	}
	if input.Body.Number != nil {
		fields["number"] = *input.Body.Number
	}
	if input.Body.UserID != nil {
		fields["user_id"] = *input.Body.UserID
	}

	state := policy.RequestState(req.Approved)
	allowed := policy.StoreRequests.Filter(state, policy.RoleFor(actor.Privileged), fields)
	if len(fields) > 0 && len(allowed) == 0 {
		return nil, huma.Error403Forbidden("Request is read-only")
	}

	if name, ok := allowed["name"]; ok {
		req.Name = name.(string)
	}
	if city, ok := allowed["city"]; ok {
		req.City = city.(string)
	}
	if number, ok := allowed["number"]; ok {
		req.Number = number.(string)
	}
	if userID, ok := allowed["user_id"]; ok {
		req.UserID = userID.(uint)
	}

	// Save, not Updates, so the uppercasing hook runs.
	if err := h.db.Save(req).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update store request")
	}
	return &StoreRequestOutput{Body: storeRequestResponse(*req)}, nil
}

type ApproveRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type ApproveRequestOutput struct {
	Body ApprovalOutcome
}

func (h *RequestHandler) HandleApproveStoreRequest(ctx context.Context, input *ApproveRequestInput) (*ApproveRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, huma.Error403Forbidden("Only operators can approve requests")
	}

	result, err := h.workflow.ApproveStoreRequest(ctx, input.ID)
	if err != nil {
		return nil, approvalError(err)
	}
	return &ApproveRequestOutput{Body: outcomeOf(result)}, nil
}

type DeleteRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *RequestHandler) HandleDeleteStoreRequest(ctx context.Context, input *DeleteRequestInput) (*struct{}, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var req models.StoreRequest
	if err := h.db.First(&req, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Store request not found")
	}
	if !policy.CanDeleteRequest(policy.RequestState(req.Approved), policy.RoleFor(actor.Privileged)) {
		return nil, huma.Error403Forbidden("Request cannot be deleted")
	}

	if err := h.db.Delete(&req).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete store request")
	}
	return nil, nil
}

// --- User requests ---

type UserRequestResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ProfessionID *uint     `json:"profession_id,omitempty"`
	Message      string    `json:"message,omitempty"`
	LodgeName    string    `json:"lodge_name"`
	LodgeNumber  string    `json:"lodge_number"`
	Approved     bool      `json:"approved"`
	CreatedAt    time.Time `json:"created_at"`
}

func userRequestResponse(r models.UserRequest) UserRequestResponse {
	return UserRequestResponse{
		ID:           r.ID,
		Name:         r.Name,
		Surname:      r.Surname,
		Email:        r.Email,
		Phone:        r.Phone,
		ProfessionID: r.ProfessionID,
		Message:      r.Message,
		LodgeName:    r.LodgeName,
		LodgeNumber:  r.LodgeNumber,
		Approved:     r.Approved,
		CreatedAt:    r.CreatedAt,
	}
}

type ListUserRequestsInput struct {
	auth.AuthInput
	Approved *bool `query:"approved"`
}

type ListUserRequestsOutput struct {
	Body []UserRequestResponse
}

func (h *RequestHandler) HandleListUserRequests(ctx context.Context, input *ListUserRequestsInput) (*ListUserRequestsOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, huma.Error403Forbidden("Only operators can list user requests")
	}

	query := h.db.Model(&models.UserRequest{}).Order("created_at")
	if input.Approved != nil {
		query = query.Where("approved = ?", *input.Approved)
	}

	var requests []models.UserRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list user requests")
	}

	res := &ListUserRequestsOutput{Body: make([]UserRequestResponse, 0, len(requests))}
	for _, r := range requests {
		res.Body = append(res.Body, userRequestResponse(r))
	}
	return res, nil
}

type GetUserRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type UserRequestOutput struct {
	Body UserRequestResponse
}

func (h *RequestHandler) HandleGetUserRequest(ctx context.Context, input *GetUserRequestInput) (*UserRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, huma.Error403Forbidden("Only operators can view user requests")
	}

	var req models.UserRequest
	if err := h.db.First(&req, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("User request not found")
	}
	return &UserRequestOutput{Body: userRequestResponse(req)}, nil
}

func (h *RequestHandler) HandleApproveUserRequest(ctx context.Context, input *ApproveRequestInput) (*ApproveRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, huma.Error403Forbidden("Only operators can approve requests")
	}

	result, err := h.workflow.ApproveUserRequest(ctx, input.ID)
	if err != nil {
		return nil, approvalError(err)
	}
	return &ApproveRequestOutput{Body: outcomeOf(result)}, nil
}

func (h *RequestHandler) HandleDeleteUserRequest(ctx context.Context, input *DeleteRequestInput) (*struct{}, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var req models.UserRequest
	if err := h.db.First(&req, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("User request not found")
	}
	if !policy.CanDeleteRequest(policy.RequestState(req.Approved), policy.RoleFor(actor.Privileged)) {
		return nil, huma.Error403Forbidden("Request cannot be deleted")
	}

	if err := h.db.Delete(&req).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete user request")
	}
	return nil, nil
}

// --- Cancel-event requests ---

type CancelEventRequestResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	EventID   uint      `json:"event_id"`
	Reason    string    `json:"reason"`
	Reviewed  bool      `json:"reviewed"`
	CreatedAt time.Time `json:"created_at"`
}

func cancelRequestResponse(r models.CancelEventRequest) CancelEventRequestResponse {
	return CancelEventRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		EventID:   r.EventID,
		Reason:    r.Reason,
		Reviewed:  r.Reviewed,
		CreatedAt: r.CreatedAt,
	}
}

type CreateCancelRequestInput struct {
	auth.AuthInput
	Body struct {
		EventID uint   `json:"event_id" required:"true"`
		Reason  string `json:"reason,omitempty"`
	}
}

type CancelRequestOutput struct {
	Body CancelEventRequestResponse
}

func (h *RequestHandler) HandleCreateCancelRequest(ctx context.Context, input *CreateCancelRequestInput) (*CancelRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var event models.Event
	query := h.db.Where("id = ?", input.Body.EventID)
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}
	if err := query.First(&event).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}

	req := models.CancelEventRequest{
		UserID:  actor.ID,
		EventID: event.ID,
		Reason:  input.Body.Reason,
	}
	if err := h.db.Create(&req).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create cancellation request")
	}
	return &CancelRequestOutput{Body: cancelRequestResponse(req)}, nil
}

type ListCancelRequestsInput struct {
	auth.AuthInput
}

type ListCancelRequestsOutput struct {
	Body []CancelEventRequestResponse
}

func (h *RequestHandler) HandleListCancelRequests(ctx context.Context, input *ListCancelRequestsInput) (*ListCancelRequestsOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	query := h.db.Model(&models.CancelEventRequest{})
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}

	var requests []models.CancelEventRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list cancellation requests")
	}

	res := &ListCancelRequestsOutput{Body: make([]CancelEventRequestResponse, 0, len(requests))}
	for _, r := range requests {
		res.Body = append(res.Body, cancelRequestResponse(r))
	}
	return res, nil
}

type GetCancelRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *RequestHandler) HandleGetCancelRequest(ctx context.Context, input *GetCancelRequestInput) (*CancelRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var req models.CancelEventRequest
	query := h.db.Where("id = ?", input.ID)
	if !actor.Privileged {
		query = query.Where("user_id = ?", actor.ID)
	}
	if err := query.First(&req).Error; err != nil {
		return nil, huma.Error404NotFound("Cancellation request not found")
	}
	return &CancelRequestOutput{Body: cancelRequestResponse(req)}, nil
}

type ReviewCancelRequestInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

type ReviewCancelRequestOutput struct {
	Body CancelEventRequestResponse
}

func (h *RequestHandler) HandleReviewCancelRequest(ctx context.Context, input *ReviewCancelRequestInput) (*ReviewCancelRequestOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged {
		return nil, huma.Error403Forbidden("Only operators can review cancellation requests")
	}

	if err := h.workflow.ReviewCancelEventRequest(ctx, input.ID); err != nil {
		if errors.Is(err, workflow.ErrAlreadyApproved) {
			return nil, huma.Error409Conflict("Request already reviewed")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Cancellation request not found")
		}
		return nil, huma.Error500InternalServerError("Failed to review request")
	}

	var req models.CancelEventRequest
	if err := h.db.First(&req, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Cancellation request not found")
	}
	return &ReviewCancelRequestOutput{Body: cancelRequestResponse(req)}, nil
}
