package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/metrics"
)

// Oracle answers a prompt about one image. *OracleService implements it.
type Oracle interface {
	Ask(ctx context.Context, prompt string, image []byte, maxTokens int) (string, error)
}

const broadcastPrompt = "Analyze this image and determine if it's a screenshot of a WhatsApp broadcast message.\n\n" +
	"Specifically check for:\n" +
	"1. Is this clearly a WhatsApp interface?\n" +
	"2. Is it a broadcast list (not a group & not sending message to a particular user)?\n" +
	"3. Does the screenshot contain this exact link or URL: '%s'?\n" +
	"4. What is the timestamp or time of the message (if visible)?\n\n" +
	"Respond with a single JSON object and nothing else, with these fields:\n" +
	"- is_whatsapp_screenshot (boolean)\n" +
	"- is_broadcast_list (boolean)\n" +
	"- contains_expected_link (boolean)\n" +
	"- timestamp (string, format as shown in image, empty if not visible)\n" +
	"- confidence_score (integer 1-10)\n" +
	"- reason (brief explanation)"

const recipientPrompt = "This image is a screenshot of a WhatsApp broadcast list information page.\n" +
	"Determine the number of recipients and the name of the list.\n\n" +
	"Respond with a single JSON object and nothing else, with these fields:\n" +
	"- participant_count (integer)\n" +
	"- is_valid_list (boolean, true if this is a broadcast list info page)\n" +
	"- group_name (string)\n" +
	"- reason (brief explanation)"

// BroadcastResult is the judgment on the primary screenshot. FailureCode is
// set when the oracle could not give a usable answer; Raw then holds what it
// sent back.
type BroadcastResult struct {
	Verified             bool   `json:"verified"`
	IsMessagingApp       bool   `json:"is_whatsapp_screenshot"`
	IsBroadcastList      bool   `json:"is_broadcast_list"`
	ContainsExpectedLink bool   `json:"contains_expected_link"`
	Timestamp            string `json:"timestamp,omitempty"`
	Confidence           int    `json:"confidence_score,omitempty"`
	Reason               string `json:"reason,omitempty"`
	FailureCode          string `json:"failure_code,omitempty"`
	Raw                  string `json:"raw_response,omitempty"`
}

// RecipientResult is the judgment on the broadcast list info screenshot.
type RecipientResult struct {
	Valid            bool   `json:"is_valid_group"`
	ParticipantCount int    `json:"participant_count"`
	ListName         string `json:"group_name,omitempty"`
	Reason           string `json:"reason,omitempty"`
	FailureCode      string `json:"failure_code,omitempty"`
	Raw              string `json:"raw_response,omitempty"`
}

type EvidenceVerifier struct {
	oracle        Oracle
	minRecipients int
	metrics       *metrics.Metrics
}

func NewEvidenceVerifier(oracle Oracle, minRecipients int, m *metrics.Metrics) *EvidenceVerifier {
	if minRecipients <= 0 {
		minRecipients = config.MinRecipients
	}
	return &EvidenceVerifier{oracle: oracle, minRecipients: minRecipients, metrics: m}
}

// VerifyBroadcastScreenshot never returns an error: oracle trouble comes
// back as an unverified result with FailureCode set.
func (v *EvidenceVerifier) VerifyBroadcastScreenshot(ctx context.Context, image []byte, expectedLink string) *BroadcastResult {
	started := time.Now()
	answer, err := v.oracle.Ask(ctx, fmt.Sprintf(broadcastPrompt, expectedLink), image, config.BroadcastMaxTokens)
	v.metrics.ObserveOracle("broadcast", started)
	if err != nil {
		code, raw := oracleFailure(err)
		return &BroadcastResult{FailureCode: code, Raw: raw, Reason: "oracle call failed"}
	}

	var wire struct {
		IsMessagingApp       *bool    `json:"is_whatsapp_screenshot"`
		IsBroadcastList      *bool    `json:"is_broadcast_list"`
		ContainsExpectedLink *bool    `json:"contains_expected_link"`
		Timestamp            *string  `json:"timestamp"`
		Confidence           *float64 `json:"confidence_score"`
		Reason               *string  `json:"reason"`
	}
	if err := decodeOracleJSON(answer, &wire); err != nil ||
		wire.IsMessagingApp == nil || wire.IsBroadcastList == nil || wire.ContainsExpectedLink == nil {
		return &BroadcastResult{
			FailureCode: domain.CodeMalformedOracleResponse,
			Raw:         answer,
			Reason:      "oracle response is not valid JSON with the required fields",
		}
	}

	res := &BroadcastResult{
		IsMessagingApp:       *wire.IsMessagingApp,
		IsBroadcastList:      *wire.IsBroadcastList,
		ContainsExpectedLink: *wire.ContainsExpectedLink,
		Timestamp:            deref(wire.Timestamp),
		Reason:               deref(wire.Reason),
	}
	if wire.Confidence != nil {
		res.Confidence = int(*wire.Confidence)
	}
	res.Verified = res.IsMessagingApp && res.IsBroadcastList && res.ContainsExpectedLink
	return res
}

// VerifyRecipientList checks the list info screenshot. The list is valid
// only if the oracle says so and it has at least minRecipients recipients.
func (v *EvidenceVerifier) VerifyRecipientList(ctx context.Context, image []byte) *RecipientResult {
	started := time.Now()
	answer, err := v.oracle.Ask(ctx, recipientPrompt, image, config.RecipientMaxTokens)
	v.metrics.ObserveOracle("recipients", started)
	if err != nil {
		code, raw := oracleFailure(err)
		return &RecipientResult{FailureCode: code, Raw: raw, Reason: "oracle call failed"}
	}

	var wire struct {
		ParticipantCount *float64 `json:"participant_count"`
		IsValidList      *bool    `json:"is_valid_list"`
		ListName         *string  `json:"group_name"`
		Reason           *string  `json:"reason"`
	}
	if err := decodeOracleJSON(answer, &wire); err != nil || wire.ParticipantCount == nil || wire.IsValidList == nil {
		return &RecipientResult{
			FailureCode: domain.CodeMalformedOracleResponse,
			Raw:         answer,
			Reason:      "oracle response is not valid JSON with the required fields",
		}
	}

	res := &RecipientResult{
		ParticipantCount: int(*wire.ParticipantCount),
		ListName:         deref(wire.ListName),
		Reason:           deref(wire.Reason),
	}
	res.Valid = *wire.IsValidList && res.ParticipantCount >= v.minRecipients
	if *wire.IsValidList && !res.Valid {
		res.Reason = fmt.Sprintf("broadcast list must contain at least %d recipients", v.minRecipients)
	}
	return res
}

var fenceRe = regexp.MustCompile("```(?:json)?")

// stripFences removes markdown code fences around an oracle answer.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

func decodeOracleJSON(answer string, v any) error {
	clean := stripFences(answer)
	if !strings.HasPrefix(clean, "{") {
		return fmt.Errorf("oracle answer is not a JSON object")
	}
	return json.Unmarshal([]byte(clean), v)
}

func oracleFailure(err error) (code, raw string) {
	var ext *domain.ExternalError
	if errors.As(err, &ext) {
		return ext.Code, fmt.Sprint(ext.Payload)
	}
	return domain.CodeOracleUnreachable, err.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
