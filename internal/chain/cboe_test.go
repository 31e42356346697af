package chain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/gexcalc/internal/gex"
)

const sampleDocument = `{
  "timestamp": "2024-01-16 16:20:05",
  "data": {
    "symbol": "_SPX",
    "close": 4765.98,
    "current_price": 4766.5,
    "last_trade_time": "2024-01-16T16:15:00",
    "options": [
      {"option": "SPXW240119C04700000", "iv": 0.121, "open_interest": 1500.0, "gamma": 0.0021},
      {"option": "SPXW240119P04700000", "iv": 0.158, "open_interest": 3200.0, "gamma": 0.0019},
      {"option": "SPX240216C04800000", "iv": 0.117, "open_interest": 800.0}
    ]
  }
}`

func TestDecodeCBOE(t *testing.T) {
	snap, err := DecodeCBOE(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeCBOE failed: %v", err)
	}

	if snap.Ticker != "SPX" {
		t.Errorf("expected ticker SPX, got %q", snap.Ticker)
	}
	if snap.Spot != 4765.98 {
		t.Errorf("expected spot from close, got %v", snap.Spot)
	}
	if snap.AsOf.Location().String() != newYork.String() || snap.AsOf.Hour() != 16 || snap.AsOf.Minute() != 15 {
		t.Errorf("unexpected as-of %v", snap.AsOf)
	}
	if len(snap.Contracts) != 3 {
		t.Fatalf("expected 3 contracts, got %d", len(snap.Contracts))
	}

	put := snap.Contracts[1]
	if put.Type != gex.Put || put.Strike != 4700 || put.OpenInterest != 3200 || put.ImpliedVol != 0.158 {
		t.Errorf("unexpected put contract %+v", put)
	}
	if put.VendorGamma == nil || *put.VendorGamma != 0.0019 {
		t.Errorf("expected vendor gamma 0.0019, got %v", put.VendorGamma)
	}
	if snap.Contracts[2].VendorGamma != nil {
		t.Error("expected missing vendor gamma to stay nil")
	}

	if err := snap.Validate(); err != nil {
		t.Errorf("decoded snapshot should validate: %v", err)
	}
}

func TestDecodeCBOE_SpotFallback(t *testing.T) {
	doc := strings.Replace(sampleDocument, `"close": 4765.98`, `"close": 0`, 1)
	snap, err := DecodeCBOE(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Spot != 4766.5 {
		t.Errorf("expected spot from current_price, got %v", snap.Spot)
	}

	doc = strings.Replace(doc, `"current_price": 4766.5`, `"current_price": 0`, 1)
	if _, err := DecodeCBOE(strings.NewReader(doc)); !errors.Is(err, ErrMissingSpot) {
		t.Errorf("expected ErrMissingSpot, got %v", err)
	}
}

func TestDecodeCBOE_BadSymbol(t *testing.T) {
	doc := strings.Replace(sampleDocument, "SPX240216C04800000", "SPX2402", 1)
	if _, err := DecodeCBOE(strings.NewReader(doc)); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
}

func TestLoadFile_Compressed(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chain-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	plain := filepath.Join(tmpDir, "SPX.json")
	if err := os.WriteFile(plain, []byte(sampleDocument), 0644); err != nil {
		t.Fatal(err)
	}

	gz := filepath.Join(tmpDir, "SPX.json.gz")
	f, err := os.Create(gz)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(sampleDocument)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	zst := filepath.Join(tmpDir, "SPX.json.zst")
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zst, enc.EncodeAll([]byte(sampleDocument), nil), 0644); err != nil {
		t.Fatal(err)
	}
	enc.Close()

	for _, path := range []string{plain, gz, zst} {
		snap, err := LoadFile(path)
		if err != nil {
			t.Fatalf("%s: LoadFile failed: %v", filepath.Base(path), err)
		}
		if len(snap.Contracts) != 3 {
			t.Errorf("%s: expected 3 contracts, got %d", filepath.Base(path), len(snap.Contracts))
		}
	}
}
