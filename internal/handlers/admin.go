package handlers

import (
	"context"
	"strings"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// AdminHandler covers the operator-facing entity screens: lodges,
// professions, the setup row, and the read-only brothers directory.
type AdminHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAdminHandler(db *gorm.DB, authHandler *auth.AuthHandler) *AdminHandler {
	return &AdminHandler{db: db, authHandler: authHandler}
}

func (h *AdminHandler) authorizeOperator(ctx context.Context, cookie string) (auth.Actor, error) {
	actor, err := h.authHandler.Authorize(ctx, cookie)
	if err != nil {
		return actor, err
	}
	if !actor.Privileged {
		return actor, huma.Error403Forbidden("Operator access required")
	}
	return actor, nil
}

// --- Lodges ---

type LodgeResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	City   string `json:"city"`
	Number string `json:"number"`
}

func lodgeResponse(l models.Lodge) LodgeResponse {
	return LodgeResponse{ID: l.ID, Name: l.Name, City: l.City, Number: l.Number}
}

type ListLodgesInput struct {
	auth.AuthInput
	City string `query:"city"`
	Mine bool   `query:"mine" doc:"Only lodges the caller holds membership in"`
}

type ListLodgesOutput struct {
	Body []LodgeResponse
}

func (h *AdminHandler) HandleListLodges(ctx context.Context, input *ListLodgesInput) (*ListLodgesOutput, error) {
	actor, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	query := h.db.Model(&models.Lodge{}).Order("name")
	if input.City != "" {
		query = query.Where("city = ?", input.City)
	}
	if input.Mine {
		query = query.Where("id IN (?)",
			h.db.Model(&models.UserLodge{}).Select("lodge_id").Where("user_id = ?", actor.ID))
	}

	var lodges []models.Lodge
	if err := query.Find(&lodges).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list lodges")
	}

	res := &ListLodgesOutput{Body: make([]LodgeResponse, 0, len(lodges))}
	for _, l := range lodges {
		res.Body = append(res.Body, lodgeResponse(l))
	}
	return res, nil
}

type CreateLodgeInput struct {
	auth.AuthInput
	Body struct {
		Name   string `json:"name" required:"true"`
		City   string `json:"city" required:"true"`
		Number string `json:"number,omitempty"`
	}
}

type LodgeOutput struct {
	Body LodgeResponse
}

func (h *AdminHandler) HandleCreateLodge(ctx context.Context, input *CreateLodgeInput) (*LodgeOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if !models.ValidCity(input.Body.City) {
		return nil, huma.Error422UnprocessableEntity("Unknown city: " + input.Body.City)
	}

	lodge := models.Lodge{Name: input.Body.Name, City: input.Body.City, Number: input.Body.Number}
	if err := h.db.Create(&lodge).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create lodge")
	}
	return &LodgeOutput{Body: lodgeResponse(lodge)}, nil
}

type UpdateLodgeInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Name   *string `json:"name,omitempty"`
		City   *string `json:"city,omitempty"`
		Number *string `json:"number,omitempty"`
	}
}

func (h *AdminHandler) HandleUpdateLodge(ctx context.Context, input *UpdateLodgeInput) (*LodgeOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var lodge models.Lodge
	if err := h.db.First(&lodge, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Lodge not found")
	}

	if input.Body.Name != nil {
		lodge.Name = *input.Body.Name
	}
	if input.Body.City != nil {
		if !models.ValidCity(*input.Body.City) {
			return nil, huma.Error422UnprocessableEntity("Unknown city: " + *input.Body.City)
		}
		lodge.City = *input.Body.City
	}
	if input.Body.Number != nil {
		lodge.Number = *input.Body.Number
	}

	if err := h.db.Save(&lodge).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update lodge")
	}
	return &LodgeOutput{Body: lodgeResponse(lodge)}, nil
}

// --- Professions ---

type ProfessionResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type ListProfessionsInput struct {
	All bool `query:"all" doc:"Include inactive professions"`
}

type ListProfessionsOutput struct {
	Body []ProfessionResponse
}

// HandleListProfessions is public so the membership form can offer choices.
func (h *AdminHandler) HandleListProfessions(ctx context.Context, input *ListProfessionsInput) (*ListProfessionsOutput, error) {
	query := h.db.Model(&models.Profession{}).Order("name")
	if !input.All {
		query = query.Where("is_active = ?", true)
	}

	var professions []models.Profession
	if err := query.Find(&professions).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list professions")
	}

	res := &ListProfessionsOutput{Body: make([]ProfessionResponse, 0, len(professions))}
	for _, p := range professions {
		res.Body = append(res.Body, ProfessionResponse{ID: p.ID, Name: p.Name, IsActive: p.IsActive})
	}
	return res, nil
}

type CreateProfessionInput struct {
	auth.AuthInput
	Body struct {
		Name string `json:"name" required:"true"`
	}
}

type ProfessionOutput struct {
	Body ProfessionResponse
}

func (h *AdminHandler) HandleCreateProfession(ctx context.Context, input *CreateProfessionInput) (*ProfessionOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	profession := models.Profession{Name: input.Body.Name, IsActive: true}
	if err := h.db.Create(&profession).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create profession")
	}
	return &ProfessionOutput{Body: ProfessionResponse{ID: profession.ID, Name: profession.Name, IsActive: profession.IsActive}}, nil
}

type SetProfessionActiveInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		IsActive bool `json:"is_active"`
	}
}

func (h *AdminHandler) HandleSetProfessionActive(ctx context.Context, input *SetProfessionActiveInput) (*ProfessionOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var profession models.Profession
	if err := h.db.First(&profession, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Profession not found")
	}

	if err := h.db.Model(&profession).Update("is_active", input.Body.IsActive).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update profession")
	}
	profession.IsActive = input.Body.IsActive
	return &ProfessionOutput{Body: ProfessionResponse{ID: profession.ID, Name: profession.Name, IsActive: profession.IsActive}}, nil
}

// --- Setup ---

type SetupResponse struct {
	URL         string `json:"url"`
	CalendarURL string `json:"calendar_url"`
	AdminEmail  string `json:"admin_email"`
}

type GetSetupInput struct {
	auth.AuthInput
}

type SetupOutput struct {
	Body SetupResponse
}

func (h *AdminHandler) HandleGetSetup(ctx context.Context, input *GetSetupInput) (*SetupOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var setup models.Setup
	if err := h.db.First(&setup, models.SetupID).Error; err != nil {
		return nil, huma.Error404NotFound("Setup has not been configured yet")
	}
	return &SetupOutput{Body: SetupResponse{URL: setup.URL, CalendarURL: setup.CalendarURL, AdminEmail: setup.AdminEmail}}, nil
}

type PutSetupInput struct {
	auth.AuthInput
	Body struct {
		URL         string `json:"url" required:"true"`
		CalendarURL string `json:"calendar_url" required:"true"`
		AdminEmail  string `json:"admin_email" required:"true" format:"email"`
	}
}

// HandlePutSetup upserts the single configuration row.
func (h *AdminHandler) HandlePutSetup(ctx context.Context, input *PutSetupInput) (*SetupOutput, error) {
	if _, err := h.authorizeOperator(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var setup models.Setup
	err := h.db.First(&setup, models.SetupID).Error
	if err != nil {
		setup = models.Setup{}
		setup.ID = models.SetupID
	}
	setup.URL = input.Body.URL
	setup.CalendarURL = input.Body.CalendarURL
	setup.AdminEmail = input.Body.AdminEmail

	if err := h.db.Save(&setup).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to save setup")
	}
	return &SetupOutput{Body: SetupResponse{URL: setup.URL, CalendarURL: setup.CalendarURL, AdminEmail: setup.AdminEmail}}, nil
}

// --- Brothers directory ---

type BrotherResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Lodges   string `json:"lodges"`
}

type ListBrothersInput struct {
	auth.AuthInput
}

type ListBrothersOutput struct {
	Body []BrotherResponse
}

// HandleListBrothers is the read-only member directory: every authenticated
// user may browse it, privileged accounts are left out.
func (h *AdminHandler) HandleListBrothers(ctx context.Context, input *ListBrothersInput) (*ListBrothersOutput, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	var users []models.User
	if err := h.db.Where("privileged = ?", false).
		Order("first_name, last_name").Find(&users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list brothers")
	}

	res := &ListBrothersOutput{Body: make([]BrotherResponse, 0, len(users))}
	for _, u := range users {
		var memberships []models.UserLodge
		h.db.Preload("Lodge").Where("user_id = ?", u.ID).Find(&memberships)

		names := make([]string, 0, len(memberships))
		for _, m := range memberships {
			names = append(names, m.Lodge.Name)
		}
		lodges := "-"
		if len(names) > 0 {
			lodges = strings.Join(names, ", ")
		}

		res.Body = append(res.Body, BrotherResponse{
			ID:       u.ID,
			FullName: u.FullName(),
			Email:    u.Email,
			Phone:    u.Phone,
			Lodges:   lodges,
		})
	}
	return res, nil
}
