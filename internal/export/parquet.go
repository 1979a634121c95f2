package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/zepiy/stockmeta/internal/models"
)

// ManifestRecord is one row of the columnar manifest
type ManifestRecord struct {
	Title                string   `parquet:"title"`
	Description          string   `parquet:"description"`
	Keywords             []string `parquet:"keywords,list"`
	Filename             string   `parquet:"filename"`
	AdobeStockCategory   string   `parquet:"adobe_stock_category,optional"`
	ShutterstockCategory string   `parquet:"shutterstock_category,optional"`
	VecteezyCategory     string   `parquet:"vecteezy_category,optional"`
	One23RFCategory      string   `parquet:"123rf_category,optional"`
	DreamstimeCategory   string   `parquet:"dreamstime_category,optional"`
}

func manifestRecord(r *models.GenerationResult) ManifestRecord {
	return ManifestRecord{
		Title:                r.Title,
		Description:          r.Description,
		Keywords:             r.Keywords,
		Filename:             r.Filename,
		AdobeStockCategory:   r.AdobeStockCategory,
		ShutterstockCategory: r.ShutterstockCategory,
		VecteezyCategory:     r.VecteezyCategory,
		One23RFCategory:      r.One23RFCategory,
		DreamstimeCategory:   r.DreamstimeCategory,
	}
}

// WriteParquetManifest writes the same rows as metadata.csv in parquet form
func WriteParquetManifest(w io.Writer, results []*models.GenerationResult) error {
	records := make([]ManifestRecord, len(results))
	for i, r := range results {
		records[i] = manifestRecord(r)
	}

	pw := parquet.NewGenericWriter[ManifestRecord](w)
	if _, err := pw.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
