package services

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"dealerdir/internal/models"
	"dealerdir/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ValidationError reports a request the service refused before touching storage
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

type DealerService interface {
	List(ctx context.Context, filter models.DealerListFilter) ([]*models.DealerSummary, error)
	Coordinates(ctx context.Context) ([]*models.DealerLocation, error)
	Get(ctx context.Context, dealerNumber string) (*models.DealerDetail, error)
	Update(ctx context.Context, dealerNumber string, payload *models.DealerDetail) (*models.DealerDetail, error)
	Salesmen(ctx context.Context) ([]*models.Salesman, error)
}

type dealerService struct {
	dealerRepo repositories.DealerRepository
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewDealerService(dealerRepo repositories.DealerRepository, logger *zap.Logger) DealerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dealerService{
		dealerRepo: dealerRepo,
		validate:   newValidator(),
		logger:     logger.Named("dealers"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON key so messages match the payload the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *dealerService) List(ctx context.Context, filter models.DealerListFilter) ([]*models.DealerSummary, error) {
	dealers, err := s.dealerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	salesman := strings.TrimSpace(filter.SalesmanCode)
	if query == "" && salesman == "" {
		return dealers, nil
	}

	filtered := make([]*models.DealerSummary, 0, len(dealers))
	for _, d := range dealers {
		if salesman != "" && !strings.EqualFold(d.SalesmanCode, salesman) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(d.DealerNumber), query) &&
			!strings.Contains(strings.ToLower(d.DealershipName), query) &&
			!strings.Contains(strings.ToLower(d.DBA), query) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered, nil
}

func (s *dealerService) Coordinates(ctx context.Context) ([]*models.DealerLocation, error) {
	rows, err := s.dealerRepo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	locations := make([]*models.DealerLocation, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		loc, ok := RecoverLocation(row.City, row.State, row.ZipCode)
		if !ok {
			skipped++
			continue
		}
		cleaned := *row
		cleaned.StreetAddress = strings.TrimSpace(row.StreetAddress)
		cleaned.City = loc.City
		cleaned.State = loc.State
		cleaned.ZipCode = loc.Zip
		locations = append(locations, &cleaned)
	}

	if skipped > 0 {
		s.logger.Debug("skipped dealer locations without usable city/state/zip",
			zap.Int("skipped", skipped),
			zap.Int("returned", len(locations)))
	}
	return locations, nil
}

func (s *dealerService) Get(ctx context.Context, dealerNumber string) (*models.DealerDetail, error) {
	dealerNumber = strings.TrimSpace(dealerNumber)
	if dealerNumber == "" {
		return nil, &ValidationError{Message: "dealer number is required"}
	}
	return s.dealerRepo.GetDetail(ctx, dealerNumber)
}

func (s *dealerService) Update(ctx context.Context, dealerNumber string, payload *models.DealerDetail) (*models.DealerDetail, error) {
	dealerNumber = strings.TrimSpace(dealerNumber)
	if dealerNumber == "" {
		return nil, &ValidationError{Message: "dealer number is required"}
	}
	if payload == nil {
		return nil, &ValidationError{Message: "request body is required"}
	}

	normalizeDetail(payload)
	payload.DealerNumber = dealerNumber

	if err := s.validate.StructCtx(ctx, payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, toValidationError(fieldErrs)
		}
		return nil, errors.Wrap(err, "validate dealer payload")
	}

	updated, err := s.dealerRepo.Update(ctx, dealerNumber, payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dealer updated",
		zap.String("dealer_number", dealerNumber),
		zap.Int("lines", len(updated.Lines)))
	return updated, nil
}

func (s *dealerService) Salesmen(ctx context.Context) ([]*models.Salesman, error) {
	return s.dealerRepo.ListSalesmen(ctx)
}

func normalizeDetail(d *models.DealerDetail) {
	d.DealershipName = strings.TrimSpace(d.DealershipName)
	d.DBA = strings.TrimSpace(d.DBA)
	d.SalesmanCode = strings.TrimSpace(d.SalesmanCode)

	a := &d.Address
	a.StreetAddress = strings.TrimSpace(a.StreetAddress)
	a.BoxNumber = strings.TrimSpace(a.BoxNumber)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.County = strings.TrimSpace(a.County)

	c := &d.Contact
	c.MainPhone = strings.TrimSpace(c.MainPhone)
	c.FaxNumber = strings.TrimSpace(c.FaxNumber)
	c.MainEmail = strings.TrimSpace(c.MainEmail)

	d.Salesman.SalesmanCode = strings.TrimSpace(d.Salesman.SalesmanCode)
	d.Salesman.SalesmanName = strings.TrimSpace(d.Salesman.SalesmanName)

	if d.Lines == nil {
		d.Lines = []models.ProductLine{}
	}
	for i := range d.Lines {
		d.Lines[i].LineName = strings.TrimSpace(d.Lines[i].LineName)
		d.Lines[i].AccountNumber = strings.TrimSpace(d.Lines[i].AccountNumber)
	}
}

func toValidationError(fieldErrs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Message: "invalid dealer payload", Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		// Namespace is "DealerDetail.lines[0].LineName"; drop the root type.
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			ve.Fields[field] = "is required"
		default:
			ve.Fields[field] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
	}
	return ve
}
