package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

// screenshot draws an 8x8 grid of random gray blocks and encodes it as PNG.
// Different seeds give fingerprints far apart.
func screenshot(t *testing.T, seed int64) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	var cells [8][8]uint8
	for y := range cells {
		for x := range cells[y] {
			cells[y][x] = uint8(rng.Intn(256))
		}
	}
	img := image.NewGray(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.SetGray(x, y, color.Gray{Y: cells[y/32][x/32]})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// fakeOracle answers by prompt kind.
type fakeOracle struct {
	mu        sync.Mutex
	broadcast string
	recipient string
	err       error
	prompts   []string
}

func (o *fakeOracle) Ask(_ context.Context, prompt string, _ []byte, _ int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prompts = append(o.prompts, prompt)
	if o.err != nil {
		return "", o.err
	}
	if strings.Contains(prompt, "broadcast list information page") {
		return o.recipient, nil
	}
	return o.broadcast, nil
}

func (o *fakeOracle) calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.prompts)
}

type recordingNotifier struct {
	mu       sync.Mutex
	errors   []string
	accepted []*domain.Submission
	payouts  []*domain.Payout
	ledger   []*domain.PostPayoutLedgerError
	changes  []string
}

func (n *recordingNotifier) LogError(err error, where string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, where+": "+err.Error())
}

func (n *recordingNotifier) LogSubmissionAccepted(sub *domain.Submission, _ decimal.Decimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, sub)
}

func (n *recordingNotifier) LogPayout(p *domain.Payout, _ decimal.Decimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payouts = append(n.payouts, p)
}

func (n *recordingNotifier) LogLedgerFailure(e *domain.PostPayoutLedgerError, _ decimal.Decimal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ledger = append(n.ledger, e)
}

func (n *recordingNotifier) LogStatusChange(p *domain.Payout, from string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, p.PayoutID+":"+from+"->"+p.StatusDetail)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
