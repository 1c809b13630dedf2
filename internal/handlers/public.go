package handlers

import (
	"context"

	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// PublicHandler serves the self-service membership request form.
type PublicHandler struct {
	db       *gorm.DB
	workflow *workflow.Service
	validate *validator.Validate
}

func NewPublicHandler(db *gorm.DB, wf *workflow.Service) *PublicHandler {
	return &PublicHandler{db: db, workflow: wf, validate: validator.New()}
}

type MembershipRequestBody struct {
	Name          string `json:"name" validate:"required" doc:"First name"`
	Surname       string `json:"surname" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=15"`
	ProfessionID  *uint  `json:"profession_id,omitempty"`
	LodgeName     string `json:"lodge_name" validate:"required"`
	LodgeNumber   string `json:"lodge_number" validate:"required,max=20"`
	Message       string `json:"message,omitempty"`
	TermsAccepted bool   `json:"terms_accepted" validate:"required" doc:"Must be true to submit"`
}

type MembershipRequestInput struct {
	Body MembershipRequestBody
}

type MembershipRequestOutput struct {
	Body struct {
		ID       uint     `json:"id"`
		Message  string   `json:"message"`
		Status   string   `json:"status"`
		Warnings []string `json:"warnings,omitempty"`
	}
}

func (h *PublicHandler) HandleSubmitMembershipRequest(ctx context.Context, input *MembershipRequestInput) (*MembershipRequestOutput, error) {
	if err := h.validate.Struct(input.Body); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				if fe.Field() == "TermsAccepted" {
					return nil, huma.Error422UnprocessableEntity("Você precisa aceitar os termos para continuar.")
				}
			}
		}
		return nil, huma.Error422UnprocessableEntity("Invalid request: " + err.Error())
	}

	if input.Body.ProfessionID != nil {
		var profession models.Profession
		if err := h.db.Where("id = ? AND is_active = ?", *input.Body.ProfessionID, true).
			First(&profession).Error; err != nil {
			return nil, huma.Error422UnprocessableEntity("Unknown or inactive profession")
		}
	}

	req := models.UserRequest{
		Name:         input.Body.Name,
		Surname:      input.Body.Surname,
		Email:        input.Body.Email,
		Phone:        input.Body.Phone,
		ProfessionID: input.Body.ProfessionID,
		Message:      input.Body.Message,
		LodgeName:    input.Body.LodgeName,
		LodgeNumber:  input.Body.LodgeNumber,
	}

	result, err := h.workflow.SubmitUserRequest(ctx, &req)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to save request: " + err.Error())
	}

	res := &MembershipRequestOutput{}
	res.Body.ID = req.ID
	res.Body.Message = "Sua solicitação foi enviada com sucesso! Você receberá um email quando sua solicitação for analisada."
	res.Body.Status = result.Status.String()
	res.Body.Warnings = result.Warnings
	return res, nil
}
