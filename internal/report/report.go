package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/dgnsrekt/gexcalc/internal/chain"
	"github.com/dgnsrekt/gexcalc/internal/gex"
)

// Document is the persisted result of one engine run over one snapshot.
type Document struct {
	RunID       string               `json:"run_id"`
	Ticker      string               `json:"ticker"`
	AsOf        time.Time            `json:"as_of"`
	Spot        float64              `json:"spot"`
	GeneratedAt time.Time            `json:"generated_at"`
	ZeroGamma   *float64             `json:"zero_gamma"`
	Strikes     []gex.StrikeExposure `json:"strikes"`
	Profile     []gex.ProfilePoint   `json:"profile"`
}

// NewRunID returns a fresh identifier shared by every document of a run.
func NewRunID() string {
	return uuid.New().String()
}

func New(runID string, snap *gex.Snapshot, res *gex.Result) *Document {
	return &Document{
		RunID:       runID,
		Ticker:      snap.Ticker,
		AsOf:        snap.AsOf,
		Spot:        snap.Spot,
		GeneratedAt: time.Now().UTC(),
		ZeroGamma:   res.ZeroGamma,
		Strikes:     res.Strikes,
		Profile:     res.Profile,
	}
}

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatZstd Format = "zstd"
)

// Filename returns the report file name for the format.
func (f Format) Filename() string {
	if f == FormatZstd {
		return "gex.json.zst"
	}
	return "gex.json"
}

// Encoder serializes documents. Safe for concurrent use.
type Encoder struct {
	format Format
	pretty bool
	zstd   *zstd.Encoder
}

func NewEncoder(format Format, pretty bool) (*Encoder, error) {
	e := &Encoder{format: format, pretty: pretty}
	switch format {
	case FormatJSON, "":
		e.format = FormatJSON
	case FormatZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		e.zstd = enc
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
	return e, nil
}

// Format returns the encoder's output format.
func (e *Encoder) Format() Format {
	return e.format
}

func (e *Encoder) Encode(doc *Document) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if e.pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	if e.zstd != nil {
		return e.zstd.EncodeAll(data, nil), nil
	}
	return data, nil
}

// Close releases encoder resources.
func (e *Encoder) Close() {
	if e.zstd != nil {
		e.zstd.Close()
	}
}

// Decode reads a JSON document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &doc, nil
}

// ReadFile reads a report written in either format.
func ReadFile(path string) (*Document, error) {
	rc, err := chain.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return Decode(rc)
}
