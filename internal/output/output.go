// Package output writes the evaluation result record.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/five82/vpsnr/internal/errors"
	"github.com/five82/vpsnr/internal/util"
)

// JSON has no literal for non-finite numbers, so they are written as strings.
const (
	posInf = "Infinity"
	negInf = "-Infinity"
	nan    = "NaN"
)

// Decibels is a PSNR value that round-trips infinity through JSON.
type Decibels float64

// MarshalJSON writes finite values as numbers and non-finite values as strings.
func (d Decibels) MarshalJSON() ([]byte, error) {
	v := float64(d)
	switch {
	case math.IsInf(v, 1):
		return json.Marshal(posInf)
	case math.IsInf(v, -1):
		return json.Marshal(negInf)
	case math.IsNaN(v):
		return json.Marshal(nan)
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or one of the non-finite strings.
func (d *Decibels) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case posInf, "inf", "+Infinity":
			*d = Decibels(math.Inf(1))
		case negInf, "-inf":
			*d = Decibels(math.Inf(-1))
		case nan:
			*d = Decibels(math.NaN())
		default:
			return fmt.Errorf("invalid decibel value %q", s)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Decibels(v)
	return nil
}

// Record is the persisted result of one comparison.
type Record struct {
	GTVideo   string   `json:"gt_video"`
	PredVideo string   `json:"pred_video"`
	PSNR      Decibels `json:"psnr"`
}

// NewRecord builds a record for the given inputs and score.
func NewRecord(gtVideo, predVideo string, psnr float64) Record {
	return Record{GTVideo: gtVideo, PredVideo: predVideo, PSNR: Decibels(psnr)}
}

// Marshal encodes the record with four-space indentation.
func (r Record) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, errors.NewIOError("failed to encode result", err)
	}
	return data, nil
}

// WriteFile writes the record to path, creating parent directories as needed.
func WriteFile(path string, r Record) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}

	if err := util.EnsureParentDirectory(path); err != nil {
		return errors.NewIOError("failed to create output directory", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewIOError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
