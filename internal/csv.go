// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{"func_name", "tot_exec_time", "tot_exec", "min_exec_time", "max_exec_time", "average", "std_dev"}

// WriteCSV writes one row per function: name,total,calls,min,max,mean,stddev
func WriteCSV(w io.Writer, stats TraceDataset, header bool) error {
	csvWriter := csv.NewWriter(w)

	if header {
		if err := csvWriter.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, fn := range stats.Ordered() {
		record := []string{
			fn.Name,
			fn.Stats.Total.String(),
			strconv.Itoa(fn.Stats.Calls),
			fn.Stats.Min.String(),
			fn.Stats.Max.String(),
			fn.Stats.Mean.String(),
			fn.Stats.StdDev.String(),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record for %s: %w", fn.Name, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// AppendCSVFile appends the rows to filename, creating it if needed. Earlier runs are kept.
func AppendCSVFile(filename string, stats TraceDataset, header bool) error {
	file, err := openAppend(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, stats, header); err != nil {
		return err
	}
	return file.Close()
}

func openAppend(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G302
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for appending: %w", filename, err)
	}
	return file, nil
}
