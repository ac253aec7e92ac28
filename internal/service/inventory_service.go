package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/models"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/export"
)

// Supported inventory formats.
const (
	InventoryFormatCSV = "csv"
	InventoryFormatPDF = "pdf"
)

var inventoryColumns = []export.Column{
	{Title: "ID", Weight: 1},
	{Title: "Semester", Weight: 1},
	{Title: "Course", Weight: 3},
	{Title: "Type", Weight: 2},
	{Title: "File", Weight: 4},
	{Title: "Uploader", Weight: 2},
	{Title: "Uploaded At", Weight: 3},
}

type inventorySource interface {
	All(ctx context.Context) ([]models.Resource, error)
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	Extension() string
}

// InventoryFile is a rendered inventory ready to be sent.
type InventoryFile struct {
	Name    string
	Content []byte
	Rows    int
}

// InventoryService renders the full resource inventory.
type InventoryService struct {
	source    inventorySource
	renderers map[string]renderer
	now       func() time.Time
	logger    *zap.Logger
}

// NewInventoryService constructs an InventoryService with CSV and PDF renderers.
func NewInventoryService(source inventorySource, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		source: source,
		renderers: map[string]renderer{
			InventoryFormatCSV: export.NewCSVExporter(),
			InventoryFormatPDF: export.NewPDFExporter(),
		},
		now:    time.Now,
		logger: logger,
	}
}

// Generate renders the inventory in the requested format. An empty format means CSV.
func (s *InventoryService) Generate(ctx context.Context, format string) (*InventoryFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = InventoryFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "format must be csv or pdf")
	}

	items, err := s.source.All(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payload, err := r.Render(buildInventoryDataset(items), fmt.Sprintf("Resource inventory %s", now.Format("2006-01-02 15:04 MST")))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodeInternal, "failed to render inventory")
	}
	name := fmt.Sprintf("inventory_%s.%s", now.Format("20060102_150405"), r.Extension())
	s.logger.Info("inventory generated", zap.String("format", format), zap.Int("rows", len(items)))
	return &InventoryFile{Name: name, Content: payload, Rows: len(items)}, nil
}

func buildInventoryDataset(items []models.Resource) export.Dataset {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			strconv.Itoa(item.Semester),
			item.Course,
			item.ResourceType,
			item.FileName,
			strconv.FormatInt(item.UploaderID, 10),
			item.UploadedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Columns: inventoryColumns, Rows: rows}
}
