package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/gendata/gendata-api/internal/store"
	"github.com/gendata/gendata-api/internal/tabular"
)

// Columns with a fixed meaning; every other column goes to metadata.
const (
	colLogin       = "login"
	colFullName    = "full_name"
	colCompanyName = "company_name"
	colRole        = "role"
	colPassword    = "password"
)

// generatedPasswordBytes gives a 16 character URL-safe password.
const generatedPasswordBytes = 12

var reservedColumns = map[string]bool{
	colLogin:       true,
	colFullName:    true,
	colCompanyName: true,
	colRole:        true,
	colPassword:    true,
}

// ImportService reconciles an uploaded table of users against the store,
// keyed by login.
type ImportService struct {
	users  UserStore
	hasher PasswordHasher
}

func NewImportService(users UserStore, hasher PasswordHasher) *ImportService {
	return &ImportService{users: users, hasher: hasher}
}

type importRow struct {
	login       string
	fullName    *string
	companyName *string
	role        string
	roleGiven   bool
	password    string
	metadata    models.Metadata
}

// Import parses raw as the tabular file named filename and upserts each row.
// Format, parse and missing-column failures abort before any row is touched;
// a failing row is recorded in the summary and the batch continues.
func (s *ImportService) Import(ctx context.Context, raw []byte, filename string) (*dto.ImportSummary, error) {
	if !tabular.IsSupported(filename) {
		return nil, tabular.ErrUnsupportedFormat
	}

	table, err := tabular.Parse(raw, filename)
	if err != nil {
		return nil, err
	}
	if err := table.Require(colLogin); err != nil {
		return nil, err
	}

	summary := &dto.ImportSummary{Message: "Import completed"}
	for i, row := range table.Rows {
		// line in the uploaded file, header included, so admins can find the row
		rowNum := table.Lines[i]
		created, err := s.importRow(ctx, table.Headers, row)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if created {
			summary.Imported++
		} else {
			summary.Updated++
		}
	}

	slog.Info("users imported",
		"action", "user_import",
		"filename", filename,
		"rows", len(table.Rows),
		"imported", summary.Imported,
		"updated", summary.Updated,
		"failed", len(summary.Errors),
	)
	return summary, nil
}

// importRow upserts one row and reports whether a new user was created.
func (s *ImportService) importRow(ctx context.Context, headers []string, row tabular.Row) (created bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	in, err := decodeRow(headers, row)
	if err != nil {
		return false, err
	}

	existing, err := s.users.GetByLogin(ctx, in.login)
	switch {
	case err == nil:
		return false, s.update(ctx, existing, in)
	case errors.Is(err, store.ErrNotFound):
		return true, s.create(ctx, in)
	default:
		return false, err
	}
}

func decodeRow(headers []string, row tabular.Row) (*importRow, error) {
	in := &importRow{
		login:       strings.TrimSpace(row[colLogin]),
		fullName:    optional(row[colFullName]),
		companyName: optional(row[colCompanyName]),
		role:        models.RoleClient,
		password:    strings.TrimSpace(row[colPassword]),
		metadata:    models.Metadata{},
	}
	if in.login == "" {
		return nil, errors.New("empty login")
	}

	if role := strings.TrimSpace(row[colRole]); role != "" {
		in.role = models.NormalizeRole(role)
		in.roleGiven = true
	}

	for _, h := range headers {
		if reservedColumns[h] {
			continue
		}
		if v, ok := row[h]; ok && strings.TrimSpace(v) != "" {
			in.metadata[h] = v
		}
	}
	return in, nil
}

func (s *ImportService) create(ctx context.Context, in *importRow) error {
	password := in.password
	if password == "" {
		generated, err := GeneratePassword(generatedPasswordBytes)
		if err != nil {
			return err
		}
		password = generated
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user := &models.User{
		Login:          in.login,
		HashedPassword: hash,
		FullName:       in.fullName,
		CompanyName:    in.companyName,
		Role:           in.role,
		IsActive:       true,
	}
	user.SetMetadata(in.metadata)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateLogin) {
			return ErrLoginTaken
		}
		return err
	}
	return nil
}

// update overwrites only the fields the row provides and merges metadata.
func (s *ImportService) update(ctx context.Context, user *models.User, in *importRow) error {
	if in.fullName != nil {
		user.FullName = in.fullName
	}
	if in.companyName != nil {
		user.CompanyName = in.companyName
	}
	if in.roleGiven {
		user.Role = in.role
	}
	if len(in.metadata) > 0 {
		user.SetMetadata(user.MetadataMap().Merge(in.metadata))
	}
	return s.users.Save(ctx, user)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
