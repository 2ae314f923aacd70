// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/segmentio/go-hll"
)

// MarshalCBOR stores the distinct states HLL as a CBOR byte string.
func (hw HLLWrapper) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(hw.ToBytes())
}

func (hw *HLLWrapper) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	h, err := hll.FromBytes(raw)
	if err != nil {
		return err
	}
	hw.Hll = &h
	return nil
}

// Time is encoded as CBOR tag 1004 with string representation
func (tw TimeWrapper) MarshalCBOR() ([]byte, error) {
	tag := cbor.Tag{Number: 1004, Content: tw.Format(time.DateOnly)}
	return cbor.Marshal(tag)
}

func (tw *TimeWrapper) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number == 1004 {
		if dateStr, ok := tag.Content.(string); ok {
			if parsedDate, err := time.Parse(time.DateOnly, dateStr); err == nil {
				tw.Time = parsedDate
				return nil
			}
		}
	}

	return fmt.Errorf("unable to unmarshal TimeWrapper")
}

// WriteSnapshotFile replaces filename with the CBOR encoding of a dataset. Decimals use their binary encoding.
func WriteSnapshotFile(stats TraceDataset, filename string) (string, error) {
	data, err := MarshalDatasetToCBOR(stats)
	if err != nil {
		return "", fmt.Errorf("failed to encode dataset %s: %w", stats.Identifier, err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// DatasetSequence merges the snapshots of one or more CBOR sequences as they are decoded, so only the running
// Result is kept in memory.
type DatasetSequence struct {
	target string
	Count  int
	Result TraceDataset
}

func NewDatasetSequence(target string, date *time.Time) *DatasetSequence {
	return &DatasetSequence{
		target: target,
		Count:  0,
		Result: newDataset(date),
	}
}

// LoadSnapshotFile loads all datasets from a CBOR file.
func (seq *DatasetSequence) LoadSnapshotFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return seq.LoadSnapshotSequenceFromReader(file, fmt.Sprintf("%s#%%d", filename))
}

// LoadSnapshotSequenceFromReader decodes datasets from a CBOR sequence until the reader is exhausted.
// Each dataset is named by filenameFmt and its position in the sequence, starting at 1.
func (seq *DatasetSequence) LoadSnapshotSequenceFromReader(reader io.Reader, filenameFmt string) error {
	dec := cbor.NewDecoder(reader)

	for seqNum := 1; ; seqNum++ {
		var this TraceDataset
		err := dec.Decode(&this)
		if errors.Is(err, io.EOF) {
			return nil
		}
		source := fmt.Sprintf(filenameFmt, seqNum)
		if err != nil {
			return fmt.Errorf("failed to decode dataset %s: %w", source, err)
		}

		if err := this.restore(); err != nil {
			return fmt.Errorf("dataset %s: %w", source, err)
		}
		this.extraSource = source

		if err := seq.addDataset(this); err != nil {
			return err
		}
	}
}

// restore fills in what a decoded dataset does not carry and recomputes the derived statistics.
func (dataset *TraceDataset) restore() error {
	if dataset.Functions == nil {
		dataset.Functions = make(map[string]*FunctionStats)
	}
	if dataset.StatesHll == nil || dataset.StatesHll.Hll == nil {
		dataset.StatesHll = &HLLWrapper{Hll: &hll.Hll{}}
	}
	if dataset.Date == nil {
		dataset.SetDate(nil)
	}
	for _, name := range dataset.Order {
		if _, found := dataset.Functions[name]; !found {
			return fmt.Errorf("dataset %s lists function %s without statistics", dataset.Identifier, name)
		}
	}
	return dataset.finaliseStats()
}

func (seq *DatasetSequence) addDataset(dataset TraceDataset) error {
	if seq.Count == 0 {
		seq.Result = dataset
		seq.Count = 1
		return nil
	}

	aggregated, err := AggregateDatasets([]TraceDataset{seq.Result, dataset}, seq.target)
	if err != nil {
		return fmt.Errorf("failed to aggregate datasets: %w", err)
	}

	seq.Result = aggregated
	seq.Count++

	return nil
}

// MarshalDatasetToCBOR marshals a dataset to CBOR bytes
func MarshalDatasetToCBOR(dataset TraceDataset) ([]byte, error) {
	return cbor.Marshal(dataset)
}
