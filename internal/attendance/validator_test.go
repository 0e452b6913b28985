package attendance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionValidator_SignatureLength(t *testing.T) {
	v := NewSubmissionValidator(100)

	_, err := v.Validate(SubmitRequest{SessionID: "S", SignatureBlob: strings.Repeat("a", 99)})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidSubmission, CodeOf(err))
	assert.Equal(t, "signatureBlob", err.(*APIError).Field)
	assert.Contains(t, err.Error(), "at least 100 characters")

	_, err = v.Validate(SubmitRequest{SessionID: "S", SignatureBlob: strings.Repeat("a", 100)})
	assert.NoError(t, err)

	// 文字数はバイトではなくルーン
	_, err = v.Validate(SubmitRequest{SessionID: "S", SignatureBlob: strings.Repeat("é", 99)})
	assert.Error(t, err)
	_, err = v.Validate(SubmitRequest{SessionID: "S", SignatureBlob: strings.Repeat("é", 100)})
	assert.NoError(t, err)

	// 空白で水増しはできない
	_, err = v.Validate(SubmitRequest{SessionID: "S", SignatureBlob: "  " + strings.Repeat("a", 98) + "  "})
	assert.Error(t, err)
}

func TestSubmissionValidator_SessionID(t *testing.T) {
	v := NewSubmissionValidator(1)

	cases := []struct {
		name    string
		session string
		ok      bool
	}{
		{"empty", "", false},
		{"blank", " \t ", false},
		{"plain", "IT_IA", true},
		{"too long", strings.Repeat("s", 129), false},
		{"max", strings.Repeat("s", 128), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(SubmitRequest{SessionID: tc.session, SignatureBlob: "x"})
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "sessionId", err.(*APIError).Field)
		})
	}
}

func TestSubmissionValidator_NormalizesSessionID(t *testing.T) {
	v := NewSubmissionValidator(1)

	// e + 結合アキュート → é
	sub, err := v.Validate(SubmitRequest{SessionID: "  Se\u0301ance ", SignatureBlob: "x"})
	require.NoError(t, err)
	assert.Equal(t, "S\u00e9ance", sub.SessionID)
}

func TestSubmissionValidator_FirstErrorOnly(t *testing.T) {
	v := NewSubmissionValidator(100)

	_, err := v.Validate(SubmitRequest{})
	require.Error(t, err)
	assert.Equal(t, "sessionId", err.(*APIError).Field)
}

func TestSubmissionValidator_DefaultMin(t *testing.T) {
	assert.Equal(t, DefaultMinSignatureLength, NewSubmissionValidator(0).MinLength())
}
