package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

// Strategy names the rule that produced a match.
type Strategy string

const (
	StrategyExact      Strategy = "exact"
	StrategyNickname   Strategy = "nickname"
	StrategyEmail      Strategy = "email"
	StrategyFuzzy      Strategy = "fuzzy"
	StrategySingleName Strategy = "single_name"
	StrategyPhone      Strategy = "phone"
)

// minPhoneDigits is the shortest phone number trusted for matching.
const minPhoneDigits = 10

// Query describes a person as seen by an import source. Either FirstName
// (optionally with LastName) or FullName must be set.
type Query struct {
	FirstName string
	LastName  string
	FullName  string
	Email     string
	Phone     string
}

// Match is a found employee and the strategy that found it.
type Match struct {
	Employee *models.Employee
	Strategy Strategy
}

// Lookup is the storage side of the matcher. Every method ignores
// terminated employees and returns common.ErrorNotFound when nothing
// qualifies.
type Lookup interface {
	FindByExactName(ctx context.Context, first, last string) (*models.Employee, error)
	ListWithNickname(ctx context.Context) ([]*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	ListByLastName(ctx context.Context, last string) ([]*models.Employee, error)
	FindByFullName(ctx context.Context, name string) (*models.Employee, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*models.Employee, error)
}

// Finder runs the matching strategies in order of confidence.
type Finder struct {
	lookup        Lookup
	companyDomain string
}

// NewFinder returns a Finder. Emails under companyDomain are shared
// placeholder addresses and never used for matching; pass "" to disable.
func NewFinder(lookup Lookup, companyDomain string) *Finder {
	return &Finder{lookup: lookup, companyDomain: strings.ToLower(strings.TrimPrefix(companyDomain, "@"))}
}

// Find returns the first employee matched by, in order: exact first and
// last name, nickname, email, fuzzy name among same-last-name employees,
// full name for single-word queries, phone digits.
func (f *Finder) Find(ctx context.Context, q Query) (*Match, error) {
	first, last := strings.TrimSpace(q.FirstName), strings.TrimSpace(q.LastName)
	if first == "" && last == "" && q.FullName != "" {
		first, last = SplitFullName(q.FullName)
	}
	if first == "" {
		return nil, common.ErrorNotFound
	}

	if last != "" {
		if m, err := f.one(StrategyExact, func() (*models.Employee, error) {
			return f.lookup.FindByExactName(ctx, first, last)
		}); m != nil || err != nil {
			return m, err
		}
	}

	key := NormalizeName(strings.TrimSpace(first + " " + last))
	if q.FullName != "" {
		key = NormalizeName(q.FullName)
	}
	if key != "" {
		nicknamed, err := f.lookup.ListWithNickname(ctx)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		for _, e := range nicknamed {
			if NormalizeName(e.Nickname) == key {
				return &Match{Employee: e, Strategy: StrategyNickname}, nil
			}
		}
	}

	if email := strings.TrimSpace(q.Email); email != "" && !f.isCompanyEmail(email) {
		if m, err := f.one(StrategyEmail, func() (*models.Employee, error) {
			return f.lookup.FindByEmail(ctx, email)
		}); m != nil || err != nil {
			return m, err
		}
	}

	if last != "" {
		candidates, err := f.lookup.ListByLastName(ctx, last)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		full := first + " " + last
		for _, e := range candidates {
			if NamesSimilar(full, e.FirstName+" "+e.LastName) {
				return &Match{Employee: e, Strategy: StrategyFuzzy}, nil
			}
		}
	} else {
		if m, err := f.one(StrategySingleName, func() (*models.Employee, error) {
			return f.lookup.FindByFullName(ctx, first)
		}); m != nil || err != nil {
			return m, err
		}
	}

	if digits := DigitsOnly(q.Phone); len(digits) >= minPhoneDigits {
		if m, err := f.one(StrategyPhone, func() (*models.Employee, error) {
			return f.lookup.FindByPhoneDigits(ctx, digits)
		}); m != nil || err != nil {
			return m, err
		}
	}

	return nil, common.ErrorNotFound
}

// one adapts a single-row lookup: not found is not an error here.
func (f *Finder) one(s Strategy, fn func() (*models.Employee, error)) (*Match, error) {
	e, err := fn()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Match{Employee: e, Strategy: s}, nil
}

func (f *Finder) isCompanyEmail(email string) bool {
	return f.companyDomain != "" && strings.HasSuffix(strings.ToLower(email), "@"+f.companyDomain)
}
