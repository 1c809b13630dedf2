package workflow

import (
	"context"
	"errors"
	"log"

	"github.com/agendamaconica/calendar-api/internal/auth"
	"github.com/agendamaconica/calendar-api/internal/models"
	"gorm.io/gorm"
)

// SubmitUserRequest persists a self-service membership application and sends
// the admin alert plus the submitter confirmation. Mail failures degrade to
// warnings; the application itself is never rolled back.
func (s *Service) SubmitUserRequest(ctx context.Context, req *models.UserRequest) (Result, error) {
	var res Result

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		res.Status = StatusFailed
		return res, err
	}

	setup, err := s.setup()
	if err != nil {
		res.warn("admin notification not sent: %v", err)
	} else {
		err := s.send("Nova solicitação de cadastro de usuário", "user_request_notification.html", map[string]any{
			"Name":        req.Name,
			"Surname":     req.Surname,
			"Email":       req.Email,
			"Phone":       req.Phone,
			"LodgeName":   req.LodgeName,
			"LodgeNumber": req.LodgeNumber,
			"Message":     req.Message,
			"LoginURL":    setup.URL,
		}, []string{setup.AdminEmail})
		if err != nil {
			res.warn("admin notification not sent: %v", err)
		}
	}

	err = s.send("Sua solicitação de cadastro foi recebida", "user_request_confirmation.html", map[string]any{
		"Name": req.Name,
	}, []string{req.Email})
	if err != nil {
		res.warn("confirmation email not sent: %v", err)
	}

	return res, nil
}

// NotifyStoreRequestCreated mails the admin about a freshly created lodge
// request. Nothing happens when the setup row is missing.
func (s *Service) NotifyStoreRequestCreated(ctx context.Context, req *models.StoreRequest) Result {
	var res Result

	setup, err := s.setup()
	if err != nil {
		res.warn("admin notification not sent: %v", err)
		return res
	}

	var requester models.User
	if err := s.db.WithContext(ctx).First(&requester, req.UserID).Error; err != nil {
		log.Printf("Store request %d has no requester: %v", req.ID, err)
	}

	err = s.send("Nova Solicitação de Criação de Loja", "store_request_notification.html", map[string]any{
		"Name":      req.Name,
		"City":      req.City,
		"Number":    req.Number,
		"Requester": requester.Username,
		"LoginURL":  setup.URL,
	}, []string{setup.AdminEmail})
	if err != nil {
		res.warn("admin notification not sent: %v", err)
	}

	return res
}

// ApproveStoreRequest flips the approval flag with a compare-and-swap, then
// creates the lodge (reusing one with the same normalized name) and mails the
// requester. A concurrent second approval loses the swap and gets
// ErrAlreadyApproved.
func (s *Service) ApproveStoreRequest(ctx context.Context, id uint) (Result, error) {
	var res Result

	tx := s.db.WithContext(ctx).Model(&models.StoreRequest{}).
		Where("id = ? AND approved = ?", id, false).
		Update("approved", true)
	if tx.Error != nil {
		res.Status = StatusFailed
		return res, tx.Error
	}
	if tx.RowsAffected == 0 {
		res.Status = StatusFailed
		var req models.StoreRequest
		if err := s.db.First(&req, id).Error; err != nil {
			return res, err
		}
		return res, ErrAlreadyApproved
	}

	var req models.StoreRequest
	if err := s.db.Preload("User").First(&req, id).Error; err != nil {
		res.Status = StatusFailed
		return res, err
	}

	// Request names are uppercased on save, so the lookup key already matches
	// the lodge normalization.
	var lodge models.Lodge
	err := s.db.Where(models.Lodge{Name: req.Name}).
		Attrs(models.Lodge{City: req.City, Number: req.Number}).
		FirstOrCreate(&lodge).Error
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}
	res.LodgeID = lodge.ID

	setup, err := s.setup()
	if err != nil {
		res.warn("approval email not sent: %v", err)
		return res, nil
	}
	err = s.send("Sua solicitação de loja foi aprovada", "store_request_approval.html", map[string]any{
		"LodgeName": lodge.Name,
		"LoginURL":  setup.URL,
	}, []string{req.User.Email})
	if err != nil {
		res.warn("approval email not sent: %v", err)
	}

	return res, nil
}

// ApproveUserRequest provisions the account for an approved membership
// request: random password, user row, lodge membership when the lodge number
// resolves, credentials email when setup exists. Lodge and mail failures are
// warnings; only the user creation itself can fail the approval.
func (s *Service) ApproveUserRequest(ctx context.Context, id uint) (Result, error) {
	var res Result

	tx := s.db.WithContext(ctx).Model(&models.UserRequest{}).
		Where("id = ? AND approved = ?", id, false).
		Update("approved", true)
	if tx.Error != nil {
		res.Status = StatusFailed
		return res, tx.Error
	}
	if tx.RowsAffected == 0 {
		res.Status = StatusFailed
		var req models.UserRequest
		if err := s.db.First(&req, id).Error; err != nil {
			return res, err
		}
		return res, ErrAlreadyApproved
	}

	var req models.UserRequest
	if err := s.db.First(&req, id).Error; err != nil {
		res.Status = StatusFailed
		return res, err
	}

	password, err := randomPassword(12)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}

	user := models.User{
		Username:     req.Email,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.Name,
		LastName:     req.Surname,
		Phone:        req.Phone,
		ProfessionID: req.ProfessionID,
	}
	if err := s.db.Create(&user).Error; err != nil {
		res.Status = StatusFailed
		return res, err
	}
	res.UserID = user.ID
	log.Printf("User created for request %d: %s", req.ID, user.Email)

	var lodge models.Lodge
	err = s.db.Where("number = ?", req.LodgeNumber).First(&lodge).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		res.warn("lodge with number %s not found; user created without membership", req.LodgeNumber)
	case err != nil:
		res.warn("lodge lookup failed: %v", err)
	default:
		res.LodgeID = lodge.ID
		if err := s.db.Create(&models.UserLodge{UserID: user.ID, LodgeID: lodge.ID}).Error; err != nil {
			res.warn("failed to associate user with lodge %s: %v", lodge.Name, err)
		}
	}

	setup, err := s.setup()
	if err != nil {
		res.warn("approval email not sent: %v", err)
		return res, nil
	}
	err = s.send("Sua solicitação de cadastro foi aprovada", "user_request_approval.html", map[string]any{
		"Name":     req.Name,
		"Username": user.Username,
		"Password": password,
		"LoginURL": setup.URL,
	}, []string{req.Email})
	if err != nil {
		res.warn("approval email not sent: %v", err)
	}

	return res, nil
}

// ReviewCancelEventRequest marks a cancellation request as reviewed. The
// event itself is cancelled through an explicit event update.
func (s *Service) ReviewCancelEventRequest(ctx context.Context, id uint) error {
	tx := s.db.WithContext(ctx).Model(&models.CancelEventRequest{}).
		Where("id = ? AND reviewed = ?", id, false).
		Update("reviewed", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		var req models.CancelEventRequest
		if err := s.db.First(&req, id).Error; err != nil {
			return err
		}
		return ErrAlreadyApproved
	}
	return nil
}
