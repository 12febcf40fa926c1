package banking

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// fakeOTPStore implements otpStore in memory.
type fakeOTPStore struct {
	hashes map[string]map[string]string
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{hashes: make(map[string]map[string]string)}
}

func (s *fakeOTPStore) HSetWithTTL(_ context.Context, key string, fields map[string]string, _ time.Duration) error {
	record := make(map[string]string, len(fields))
	for k, v := range fields {
		record[k] = v
	}
	s.hashes[key] = record
	return nil
}

func (s *fakeOTPStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	record := s.hashes[key]
	out := make(map[string]string, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out, nil
}

func (s *fakeOTPStore) HIncrBy(_ context.Context, key, field string, incr int64) (int64, error) {
	record := s.hashes[key]
	if record == nil {
		record = make(map[string]string)
		s.hashes[key] = record
	}
	n, _ := strconv.ParseInt(record[field], 10, 64)
	n += incr
	record[field] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *fakeOTPStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.hashes, k)
	}
	return nil
}

func testOTPService(store *fakeOTPStore) *OTPService {
	return &OTPService{
		store:  store,
		cfg:    config.OTPConfig{Length: 6, Validity: 5 * time.Minute, MaxAttempts: 3},
		logger: logger.Nop(),
	}
}

func TestOTPGenerateAndVerify(t *testing.T) {
	store := newFakeOTPStore()
	s := testOTPService(store)
	ctx := context.Background()

	code, err := s.Generate(ctx, "u1", "c1", "transfer", map[string]string{
		"amount": "600", "currency": "XAF", "beneficiary": "Paul",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q, want 6 digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit", code)
		}
	}

	// The stored record never contains the plaintext.
	record := store.hashes["otp:u1:c1"]
	if record == nil {
		t.Fatal("no record stored")
	}
	if record[otpFieldHash] == code {
		t.Error("code stored in plaintext")
	}

	v, err := s.Verify(ctx, "u1", "c1", code)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Valid {
		t.Fatalf("verification rejected the issued code: %+v", v)
	}
	if v.Action != "transfer" {
		t.Errorf("action = %q, want transfer", v.Action)
	}
	if v.Metadata["amount"] != "600" || v.Metadata["beneficiary"] != "Paul" {
		t.Errorf("metadata = %v", v.Metadata)
	}

	// A consumed code cannot be replayed.
	v, err = s.Verify(ctx, "u1", "c1", code)
	if err != nil {
		t.Fatal(err)
	}
	if !v.NotFound {
		t.Errorf("replay verification = %+v, want NotFound", v)
	}
}

func TestOTPWrongCodeAttemptsAndExhaustion(t *testing.T) {
	store := newFakeOTPStore()
	s := testOTPService(store)
	ctx := context.Background()

	code, err := s.Generate(ctx, "u1", "c1", "transfer", nil)
	if err != nil {
		t.Fatal(err)
	}

	v, err := s.Verify(ctx, "u1", "c1", "000000")
	if err != nil {
		t.Fatal(err)
	}
	if v.Valid || v.Remaining != 2 {
		t.Errorf("first failure = %+v, want Remaining 2", v)
	}

	v, err = s.Verify(ctx, "u1", "c1", "000000")
	if err != nil {
		t.Fatal(err)
	}
	if v.Valid || v.Remaining != 1 {
		t.Errorf("second failure = %+v, want Remaining 1", v)
	}

	v, err = s.Verify(ctx, "u1", "c1", "000000")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Exhausted {
		t.Errorf("third failure = %+v, want Exhausted", v)
	}

	// Exhaustion revokes the record, even for the right code.
	v, err = s.Verify(ctx, "u1", "c1", code)
	if err != nil {
		t.Fatal(err)
	}
	if !v.NotFound {
		t.Errorf("post-exhaustion verification = %+v, want NotFound", v)
	}
}

func TestOTPVerifyWithoutRecord(t *testing.T) {
	s := testOTPService(newFakeOTPStore())

	v, err := s.Verify(context.Background(), "u1", "c1", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if !v.NotFound {
		t.Errorf("verification = %+v, want NotFound", v)
	}
}

func TestOTPGenerateReplacesPriorCode(t *testing.T) {
	store := newFakeOTPStore()
	s := testOTPService(store)
	ctx := context.Background()

	first, err := s.Generate(ctx, "u1", "c1", "transfer", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Generate(ctx, "u1", "c1", "transfer", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Skip("codes collided, cannot distinguish records")
	}

	v, err := s.Verify(ctx, "u1", "c1", first)
	if err != nil {
		t.Fatal(err)
	}
	if v.Valid {
		t.Error("superseded code still verifies")
	}

	v, err = s.Verify(ctx, "u1", "c1", second)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Valid {
		t.Errorf("current code rejected: %+v", v)
	}
}
