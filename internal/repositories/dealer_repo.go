package repositories

import (
	"context"

	"dealerdir/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

type DealerRepository interface {
	List(ctx context.Context) ([]*models.DealerSummary, error)
	ListLocations(ctx context.Context) ([]*models.DealerLocation, error)
	GetDetail(ctx context.Context, dealerNumber string) (*models.DealerDetail, error)
	Update(ctx context.Context, dealerNumber string, payload *models.DealerDetail) (*models.DealerDetail, error)
	ImportBatch(ctx context.Context, rows []models.ImportRow) (int, error)
	ListSalesmen(ctx context.Context) ([]*models.Salesman, error)
}

const (
	listDealersQuery = `
		SELECT dealer_number, COALESCE(dealership_name, ''), COALESCE(dba, ''), COALESCE(salesman_code, '')
		FROM dealerships
		ORDER BY COALESCE(dealership_name, '') ASC, dealer_number ASC
	`

	listLocationsQuery = `
		SELECT d.dealer_number, COALESCE(d.dealership_name, ''), COALESCE(d.dba, ''),
			COALESCE(a.street_address, ''), COALESCE(a.city, ''), COALESCE(a.state, ''),
			COALESCE(a.zip_code, ''), COALESCE(a.county, '')
		FROM dealerships d
		JOIN addresses a ON a.dealer_number = d.dealer_number
		WHERE TRIM(COALESCE(a.street_address, '')) <> '' AND TRIM(COALESCE(a.city, '')) <> ''
		ORDER BY COALESCE(d.dealership_name, '') ASC, d.dealer_number ASC
	`

	getDealerQuery = `
		SELECT d.dealer_number, COALESCE(d.dealership_name, ''), COALESCE(d.dba, ''),
			COALESCE(d.salesman_code, ''), COALESCE(s.salesman_name, '')
		FROM dealerships d
		LEFT JOIN salesmen s ON s.salesman_code = d.salesman_code
		WHERE d.dealer_number = $1
	`

	getAddressQuery = `
		SELECT COALESCE(street_address, ''), COALESCE(box_number, ''), COALESCE(city, ''),
			COALESCE(state, ''), COALESCE(zip_code, ''), COALESCE(county, '')
		FROM addresses
		WHERE dealer_number = $1
		LIMIT 1
	`

	getContactQuery = `
		SELECT COALESCE(main_phone, ''), COALESCE(fax_number, ''), COALESCE(main_email, '')
		FROM contacts
		WHERE dealer_number = $1
		LIMIT 1
	`

	listLinesQuery = `
		SELECT COALESCE(line_name, ''), COALESCE(account_number, '')
		FROM product_lines
		WHERE dealer_number = $1
		ORDER BY id ASC
	`

	updateDealerQuery = `
		UPDATE dealerships
		SET dealership_name = $1, dba = $2
		WHERE dealer_number = $3
	`

	upsertAddressQuery = `
		INSERT INTO addresses (dealer_number, street_address, box_number, city, state, zip_code, county)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dealer_number) DO UPDATE
		SET street_address = EXCLUDED.street_address, box_number = EXCLUDED.box_number, city = EXCLUDED.city,
			state = EXCLUDED.state, zip_code = EXCLUDED.zip_code, county = EXCLUDED.county
	`

	upsertContactQuery = `
		INSERT INTO contacts (dealer_number, main_phone, fax_number, main_email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dealer_number) DO UPDATE
		SET main_phone = EXCLUDED.main_phone, fax_number = EXCLUDED.fax_number, main_email = EXCLUDED.main_email
	`

	deleteLinesQuery = `DELETE FROM product_lines WHERE dealer_number = $1`

	insertLineQuery = `
		INSERT INTO product_lines (dealer_number, line_name, account_number)
		VALUES ($1, $2, $3)
	`

	assignSalesmanQuery = `UPDATE dealerships SET salesman_code = $1 WHERE dealer_number = $2`

	upsertDealerQuery = `
		INSERT INTO dealerships (dealer_number, dealership_name, dba, salesman_code)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (dealer_number) DO UPDATE
		SET dealership_name = EXCLUDED.dealership_name, dba = EXCLUDED.dba, salesman_code = EXCLUDED.salesman_code
	`

	listSalesmenQuery = `
		SELECT salesman_code, COALESCE(salesman_name, '')
		FROM salesmen
		ORDER BY COALESCE(salesman_name, '') ASC, salesman_code ASC
	`
)

type dealerRepo struct {
	db Database
}

func NewDealerRepository(db Database) DealerRepository {
	return &dealerRepo{db: db}
}

func (r *dealerRepo) List(ctx context.Context) ([]*models.DealerSummary, error) {
	rows, err := r.db.Query(ctx, listDealersQuery)
	if err != nil {
		return nil, wrapStorage("list dealers", err)
	}
	defer rows.Close()

	dealers := make([]*models.DealerSummary, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		dealer := &models.DealerSummary{}
		if err := rows.Scan(&dealer.DealerNumber, &dealer.DealershipName, &dealer.DBA, &dealer.SalesmanCode); err != nil {
			return nil, wrapStorage("list dealers", err)
		}
		if _, dup := seen[dealer.DealerNumber]; dup {
			continue
		}
		seen[dealer.DealerNumber] = struct{}{}
		dealers = append(dealers, dealer)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list dealers", err)
	}
	return dealers, nil
}

func (r *dealerRepo) ListLocations(ctx context.Context) ([]*models.DealerLocation, error) {
	rows, err := r.db.Query(ctx, listLocationsQuery)
	if err != nil {
		return nil, wrapStorage("list dealer locations", err)
	}
	defer rows.Close()

	locations := make([]*models.DealerLocation, 0)
	for rows.Next() {
		loc := &models.DealerLocation{}
		if err := rows.Scan(&loc.DealerNumber, &loc.DealershipName, &loc.DBA, &loc.StreetAddress, &loc.City, &loc.State, &loc.ZipCode, &loc.County); err != nil {
			return nil, wrapStorage("list dealer locations", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list dealer locations", err)
	}
	return locations, nil
}

func (r *dealerRepo) GetDetail(ctx context.Context, dealerNumber string) (*models.DealerDetail, error) {
	return getDetail(ctx, r.db, dealerNumber)
}

// getDetail assembles a dealer from its four tables. Missing address and
// contact rows come back as all-empty values.
func getDetail(ctx context.Context, q Querier, dealerNumber string) (*models.DealerDetail, error) {
	detail := &models.DealerDetail{Lines: []models.ProductLine{}}

	err := q.QueryRow(ctx, getDealerQuery, dealerNumber).Scan(&detail.DealerNumber, &detail.DealershipName, &detail.DBA, &detail.SalesmanCode, &detail.Salesman.SalesmanName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDealerNotFound
		}
		return nil, wrapStorage("get dealer", err)
	}
	detail.Salesman.SalesmanCode = detail.SalesmanCode

	a := &detail.Address
	err = q.QueryRow(ctx, getAddressQuery, dealerNumber).Scan(&a.StreetAddress, &a.BoxNumber, &a.City, &a.State, &a.ZipCode, &a.County)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapStorage("get dealer address", err)
	}

	c := &detail.Contact
	err = q.QueryRow(ctx, getContactQuery, dealerNumber).Scan(&c.MainPhone, &c.FaxNumber, &c.MainEmail)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapStorage("get dealer contact", err)
	}

	rows, err := q.Query(ctx, listLinesQuery, dealerNumber)
	if err != nil {
		return nil, wrapStorage("list product lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line models.ProductLine
		if err := rows.Scan(&line.LineName, &line.AccountNumber); err != nil {
			return nil, wrapStorage("list product lines", err)
		}
		detail.Lines = append(detail.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list product lines", err)
	}

	return detail, nil
}

// Update rewrites every part of a dealer in one transaction and returns the
// record as stored. Product lines are replaced, not merged.
func (r *dealerRepo) Update(ctx context.Context, dealerNumber string, payload *models.DealerDetail) (*models.DealerDetail, error) {
	var updated *models.DealerDetail

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateDealerQuery, payload.DealershipName, payload.DBA, dealerNumber)
		if err != nil {
			return wrapStorage("update dealer", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrDealerNotFound
		}

		if err := upsertAddress(ctx, tx, dealerNumber, payload.Address); err != nil {
			return err
		}
		if err := upsertContact(ctx, tx, dealerNumber, payload.Contact); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, deleteLinesQuery, dealerNumber); err != nil {
			return wrapStorage("delete product lines", err)
		}
		for _, line := range payload.Lines {
			if _, err := tx.Exec(ctx, insertLineQuery, dealerNumber, line.LineName, line.AccountNumber); err != nil {
				return wrapStorage("insert product line", err)
			}
		}

		if code := salesmanCode(payload); code != "" {
			if _, err := tx.Exec(ctx, assignSalesmanQuery, code, dealerNumber); err != nil {
				return wrapStorage("assign salesman", err)
			}
		}

		updated, err = getDetail(ctx, tx, dealerNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ImportBatch upserts dealer, address and contact for every row in a single
// transaction. Product lines are left alone. The first failure aborts the
// whole batch.
func (r *dealerRepo) ImportBatch(ctx context.Context, rows []models.ImportRow) (int, error) {
	processed := 0

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, row := range rows {
			if _, err := tx.Exec(ctx, upsertDealerQuery, row.DealerNumber, row.DealershipName, row.DBA, row.SalesmanCode); err != nil {
				return wrapStorage("import dealer "+row.DealerNumber, err)
			}
			if err := upsertAddress(ctx, tx, row.DealerNumber, row.Address); err != nil {
				return err
			}
			if err := upsertContact(ctx, tx, row.DealerNumber, row.Contact); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return processed, nil
}

func (r *dealerRepo) ListSalesmen(ctx context.Context) ([]*models.Salesman, error) {
	rows, err := r.db.Query(ctx, listSalesmenQuery)
	if err != nil {
		return nil, wrapStorage("list salesmen", err)
	}
	defer rows.Close()

	salesmen := make([]*models.Salesman, 0)
	for rows.Next() {
		s := &models.Salesman{}
		if err := rows.Scan(&s.SalesmanCode, &s.SalesmanName); err != nil {
			return nil, wrapStorage("list salesmen", err)
		}
		salesmen = append(salesmen, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorage("list salesmen", err)
	}
	return salesmen, nil
}

func upsertAddress(ctx context.Context, q Querier, dealerNumber string, a models.Address) error {
	_, err := q.Exec(ctx, upsertAddressQuery, dealerNumber, a.StreetAddress, a.BoxNumber, a.City, a.State, a.ZipCode, a.County)
	return wrapStorage("upsert address", err)
}

func upsertContact(ctx context.Context, q Querier, dealerNumber string, c models.Contact) error {
	_, err := q.Exec(ctx, upsertContactQuery, dealerNumber, c.MainPhone, c.FaxNumber, c.MainEmail)
	return wrapStorage("upsert contact", err)
}

// salesmanCode prefers the salesman sub-object and falls back to the
// top-level code.
func salesmanCode(payload *models.DealerDetail) string {
	if payload.Salesman.SalesmanCode != "" {
		return payload.Salesman.SalesmanCode
	}
	return payload.SalesmanCode
}
