package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/gexcalc/internal/gex"
)

func sampleDocument() *Document {
	zero := 4712.5
	snap := &gex.Snapshot{Ticker: "SPX", Spot: 4700, AsOf: time.Date(2024, 1, 16, 16, 15, 0, 0, time.UTC)}
	res := &gex.Result{
		Strikes: []gex.StrikeExposure{{
			Strike:   4700,
			Notional: gex.ExposureSplit{Total: 1.5, Call: 2, Put: -0.5},
		}},
		Profile: []gex.ProfilePoint{
			{Spot: 4600, All: -1},
			{Spot: 4800, All: 1},
		},
		ZeroGamma: &zero,
	}
	return New(NewRunID(), snap, res)
}

func TestNew(t *testing.T) {
	doc := sampleDocument()

	if len(doc.RunID) != 36 {
		t.Errorf("expected uuid run id, got %q", doc.RunID)
	}
	if doc.Ticker != "SPX" || doc.Spot != 4700 {
		t.Errorf("unexpected header %+v", doc)
	}
	if doc.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
	if NewRunID() == NewRunID() {
		t.Error("run ids should be unique")
	}
}

func TestEncode_JSON(t *testing.T) {
	doc := sampleDocument()

	enc, err := NewEncoder(FormatJSON, false)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	data, err := enc.Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"zero_gamma":4712.5`) {
		t.Errorf("expected zero_gamma in output, got %s", data)
	}
	if !strings.Contains(string(data), `"ex_next_monthly":0`) {
		t.Errorf("expected profile fields in output, got %s", data)
	}

	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != doc.RunID || *got.ZeroGamma != 4712.5 || len(got.Profile) != 2 {
		t.Errorf("unexpected decoded document %+v", got)
	}
}

func TestEncode_NullZeroGamma(t *testing.T) {
	doc := sampleDocument()
	doc.ZeroGamma = nil

	enc, _ := NewEncoder(FormatJSON, true)
	data, err := enc.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"zero_gamma": null`) {
		t.Errorf("expected null zero_gamma, got %s", data)
	}
}

func TestReadFile_Zstd(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "report-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	enc, err := NewEncoder(FormatZstd, false)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	doc := sampleDocument()
	data, err := enc.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, FormatZstd.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.RunID != doc.RunID {
		t.Errorf("expected run id %s, got %s", doc.RunID, got.RunID)
	}
}

func TestNewEncoder_UnknownFormat(t *testing.T) {
	if _, err := NewEncoder("xml", false); err == nil {
		t.Error("expected error for unknown format")
	}
	if FormatJSON.Filename() != "gex.json" || FormatZstd.Filename() != "gex.json.zst" {
		t.Error("unexpected report file names")
	}
}
