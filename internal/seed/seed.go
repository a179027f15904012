// Package seed loads reference data and the bootstrap administrator from
// a YAML file.  Loading is idempotent: reference rows are upserted by code
// and the administrator is only created when the email is unknown.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/civdef/volunteer-portal/internal/model"
)

// File is the document layout of seed.yaml.
type File struct {
	Districts   []model.District   `yaml:"districts"`
	Departments []model.Department `yaml:"departments"`
	Admin       *Admin             `yaml:"admin"`
}

// Admin describes the bootstrap state administrator.  PasswordEnv names an
// environment variable holding the password so it need not live in the
// file; it wins over Password when set.
type Admin struct {
	Email       string `yaml:"email"`
	Name        string `yaml:"name"`
	Password    string `yaml:"password"`
	PasswordEnv string `yaml:"passwordEnv"`
}

// RefStore upserts reference rows.
type RefStore interface {
	UpsertDistrict(ctx context.Context, d model.District) error
	UpsertDepartment(ctx context.Context, d model.Department) error
}

// AdminStore creates the bootstrap account.
type AdminStore interface {
	EnsureAdmin(ctx context.Context, email, name, password string, role model.Role, district *string, cost int) (bool, error)
}

// Result counts what a Load applied.
type Result struct {
	Districts    int
	Departments  int
	AdminCreated bool
}

// Parse decodes and checks a seed document.  Unknown keys are rejected so
// typos do not silently drop data.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := f.check(); err != nil {
		return File{}, err
	}
	return f, nil
}

// ReadFile parses the seed document at path.
func ReadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Parse(fh)
}

func (f File) check() error {
	var problems []string
	codes := map[string]bool{}
	for i, d := range f.Districts {
		problems = append(problems, refProblems("districts", i, d.Name, d.Code, codes)...)
	}
	codes = map[string]bool{}
	for i, d := range f.Departments {
		problems = append(problems, refProblems("departments", i, d.Name, d.Code, codes)...)
	}
	if a := f.Admin; a != nil {
		if strings.TrimSpace(a.Email) == "" || strings.TrimSpace(a.Name) == "" {
			problems = append(problems, "admin: email and name are required")
		}
		if a.Password == "" && a.PasswordEnv == "" {
			problems = append(problems, "admin: password or passwordEnv is required")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid seed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func refProblems(section string, i int, name, code string, seen map[string]bool) []string {
	var out []string
	if strings.TrimSpace(name) == "" || strings.TrimSpace(code) == "" {
		out = append(out, fmt.Sprintf("%s[%d]: name and code are required", section, i))
	}
	key := strings.ToUpper(strings.TrimSpace(code))
	if key != "" && seen[key] {
		out = append(out, fmt.Sprintf("%s[%d]: duplicate code %s", section, i, key))
	}
	seen[key] = true
	return out
}

// Loader applies a seed document to the database.
type Loader struct {
	Refs   RefStore
	Users  AdminStore
	Cost   int
	Log    *zap.Logger
	Getenv func(string) string
}

func NewLoader(refs RefStore, users AdminStore, cost int, log *zap.Logger) *Loader {
	return &Loader{Refs: refs, Users: users, Cost: cost, Log: log, Getenv: os.Getenv}
}

// Load upserts every district and department, then ensures the admin.
func (l *Loader) Load(ctx context.Context, f File) (Result, error) {
	var res Result
	for _, d := range f.Districts {
		if err := l.Refs.UpsertDistrict(ctx, d); err != nil {
			return res, fmt.Errorf("district %s: %w", d.Code, err)
		}
		res.Districts++
	}
	for _, d := range f.Departments {
		if err := l.Refs.UpsertDepartment(ctx, d); err != nil {
			return res, fmt.Errorf("department %s: %w", d.Code, err)
		}
		res.Departments++
	}
	l.Log.Info("reference data seeded",
		zap.Int("districts", res.Districts),
		zap.Int("departments", res.Departments))

	if f.Admin == nil {
		return res, nil
	}
	pw := f.Admin.Password
	if f.Admin.PasswordEnv != "" {
		pw = l.Getenv(f.Admin.PasswordEnv)
	}
	if pw == "" {
		return res, fmt.Errorf("admin password: %s is empty", f.Admin.PasswordEnv)
	}
	email := strings.ToLower(strings.TrimSpace(f.Admin.Email))
	created, err := l.Users.EnsureAdmin(ctx, email, strings.TrimSpace(f.Admin.Name), pw, model.RoleStateAdmin, nil, l.Cost)
	if err != nil {
		return res, fmt.Errorf("admin %s: %w", email, err)
	}
	res.AdminCreated = created
	if created {
		l.Log.Info("bootstrap admin created", zap.String("email", email))
	} else {
		l.Log.Debug("bootstrap admin already present", zap.String("email", email))
	}
	return res, nil
}
