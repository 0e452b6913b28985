package attendance

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

const DefaultMinSignatureLength = 100

// submission は正規化済みの提出内容
type submission struct {
	SessionID     string `json:"sessionId" validate:"required,max=128"`
	SignatureBlob string `json:"signatureBlob" validate:"required,signature"`
}

// SubmissionValidator checks the shape of a submission before anything is persisted.
type SubmissionValidator struct {
	v      *validator.Validate
	minLen int
}

func NewSubmissionValidator(minLen int) *SubmissionValidator {
	if minLen <= 0 {
		minLen = DefaultMinSignatureLength
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// 文字数はルーン単位
	_ = v.RegisterValidation("signature", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= minLen
	})
	return &SubmissionValidator{v: v, minLen: minLen}
}

func (sv *SubmissionValidator) MinLength() int { return sv.minLen }

// Validate: 前後の空白を落とし sessionId は NFC に揃えてから検証。最初の違反だけ返す
func (sv *SubmissionValidator) Validate(in SubmitRequest) (submission, error) {
	sub := submission{
		SessionID:     norm.NFC.String(strings.TrimSpace(in.SessionID)),
		SignatureBlob: strings.TrimSpace(in.SignatureBlob),
	}
	if err := sv.v.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return submission{}, ErrInvalidSubmission(fe.Field(), sv.reason(fe))
		}
		return submission{}, ErrInvalidSubmission("", "invalid submission")
	}
	return sub, nil
}

func (sv *SubmissionValidator) reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "signature":
		return fmt.Sprintf("%s must be at least %d characters", fe.Field(), sv.MinLength())
	default:
		return fe.Field() + " is invalid"
	}
}
