package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
)

// ValidateProfileHistory checks the ordering rules the struct tags cannot
// express.
func ValidateProfileHistory(c *domain.Candidate) error {
	for i, e := range c.Education {
		if e.EndYear != nil && *e.EndYear < e.StartYear {
			return fmt.Errorf("education entry %d ends before it starts", i+1)
		}
	}

	for i, w := range c.Work {
		if w.EndDate != nil && w.EndDate.Before(w.StartDate) {
			return fmt.Errorf("work entry %d ends before it starts", i+1)
		}
	}

	return nil
}

// NormalizeSkills trims, drops empties and removes case-insensitive
// duplicates while keeping the first spelling.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

var ErrPasswordMismatch = errors.New("passwords do not match")

func ValidatePasswordPair(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
