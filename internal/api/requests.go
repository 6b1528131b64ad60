package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/arencloud/chione/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// vault names: 1-255 of letters, digits, '_', '-', '.'
var vaultNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,255}$`)

func init() {
	validate.RegisterValidation("vaultname", func(fl validator.FieldLevel) bool {
		return vaultNameRegex.MatchString(fl.Field().String())
	})
}

type accountRequest struct {
	Account     string `json:"account" validate:"required,max=64"`
	Key         string `json:"key" validate:"required"`
	Secret      string `json:"secret" validate:"required"`
	Region      string `json:"region" validate:"required"`
	SNSTopicARN string `json:"sns_topic_arn" validate:"omitempty,startswith=arn:"`
}

func (a accountRequest) model() models.AccountConfig {
	return models.AccountConfig{
		Account:     a.Account,
		AccessKey:   a.Key,
		SecretKey:   a.Secret,
		Region:      a.Region,
		SNSTopicARN: a.SNSTopicARN,
	}
}

type inventoryRequest struct {
	VaultName string `json:"vault_name" validate:"required,vaultname"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func validVaultName(name string) bool { return vaultNameRegex.MatchString(name) }
