package services

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var formValidate = validator.New()

// FormFields is the certificate payload a citizen submits into a form slot.
// CurrentAddress and YearsOfResidence are only required for residence
// certificates; the raw payload is stored verbatim, this struct exists for
// validation only.
type FormFields struct {
	FullName         string           `json:"fullName" validate:"required"`
	BirthDate        string           `json:"birthDate" validate:"required"`
	BirthPlace       string           `json:"birthPlace" validate:"required"`
	CompleteAddress  string           `json:"completeAddress" validate:"required"`
	Purpose          string           `json:"purpose" validate:"required"`
	CurrentAddress   string           `json:"currentAddress"`
	YearsOfResidence types.FlexUint64 `json:"yearsOfResidence"`
}

// validateFormFields checks the per-type required field set and names every
// missing field in the returned Validation error.
func validateFormFields(formType models.FormType, raw []byte) error {
	var fields FormFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return types.Validation("portal.form.submit", "malformed form payload: %v", err)
	}

	var missing []string
	if err := formValidate.Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return types.Validation("portal.form.submit", "invalid form payload: %v", err)
		}
		for _, fe := range verrs {
			missing = append(missing, jsonFieldName(fe.Field()))
		}
	}

	if formType == models.FormResidence {
		if strings.TrimSpace(fields.CurrentAddress) == "" {
			missing = append(missing, "currentAddress")
		}
		if fields.YearsOfResidence == 0 {
			missing = append(missing, "yearsOfResidence")
		}
	}

	if len(missing) > 0 {
		return types.Validation("portal.form.submit",
			"missing required field(s): %s", strings.Join(missing, ", "))
	}

	return nil
}

// jsonFieldName lowers the validator's struct field name to the wire name.
func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// SubmitForm fills a form slot exactly once. The payload is stored verbatim;
// a second submit fails with Conflict and leaves the first intact.
func SubmitForm(db *gorm.DB, caller types.Caller, updateID uint64, raw json.RawMessage) (*models.FormAttachment, error) {
	update, _, err := FindUpdateForCaller(db, caller, updateID)
	if err != nil {
		return nil, err
	}

	slot, err := findFormSlot(db, update.UpdateID)
	if err != nil {
		return nil, err
	}
	if slot.Submitted() {
		return nil, types.Conflict("portal.form.submit", "form for update %d already submitted", updateID)
	}

	if err := validateFormFields(slot.FormType, raw); err != nil {
		return nil, err
	}

	fields := models.JSON{JSON: datatypes.JSON(raw)}
	now := time.Now()

	// Write-once precondition at the store level: a concurrent submit loses
	// on rows affected, not on the stale read above.
	res := db.Model(&models.FormAttachment{}).
		Where("form_id = ? AND submitted_at IS NULL", slot.FormID).
		Updates(map[string]interface{}{
			"fields":       &fields,
			"submitted_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, types.Conflict("portal.form.submit", "form for update %d already submitted", updateID)
	}

	slot.Fields = &fields
	slot.SubmittedAt = &now

	return slot, nil
}

// GetForm returns the form slot for an update; Fields stays null until the
// citizen submits, and consumers must treat that as not-yet-ready.
func GetForm(db *gorm.DB, caller types.Caller, updateID uint64) (*models.FormAttachment, error) {
	update, _, err := FindUpdateForCaller(db, caller, updateID)
	if err != nil {
		return nil, err
	}

	return findFormSlot(db, update.UpdateID)
}

func findFormSlot(db *gorm.DB, updateID uint64) (*models.FormAttachment, error) {
	var slot models.FormAttachment
	if err := db.Where("update_id = ?", updateID).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.form", "update %d has no form slot", updateID)
		}
		return nil, err
	}
	return &slot, nil
}
