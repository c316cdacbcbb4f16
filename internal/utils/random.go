package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"strings"

	"github.com/jobportal-dev/job-portal/backend/internal/domain"
	"github.com/mozillazg/go-pinyin"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

// GenerateRandomName returns a romanized first and last name built from a
// random Chinese name.
func GenerateRandomName() (first, last string) {
	surname := commonSurnames[mrand.IntN(len(commonSurnames))]
	given := ""
	for range mrand.IntN(2) + 1 {
		given += commonNameCharacters[mrand.IntN(len(commonNameCharacters))]
	}
	return romanize(given), romanize(surname)
}

func romanize(hanzi string) string {
	syllables := pinyin.LazyConvert(hanzi, nil)
	s := strings.Join(syllables, "")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var digits = "0123456789"

// GenerateEmail derives a unique-looking address from a name.
func GenerateEmail(first, last, emailDomainName string) string {
	local := strings.ToLower(first + "." + last)
	for range mrand.IntN(3) + 1 {
		local += string(digits[mrand.IntN(len(digits))])
	}
	return local + "@" + emailDomainName
}

var (
	seedRoles       = []string{"Backend Engineer", "Frontend Engineer", "Data Analyst", "Product Manager", "QA Engineer", "DevOps Engineer"}
	seedDepartments = []string{"Engineering", "Data", "Product", "Quality", "Platform"}
	seedLocations   = []string{"Bengaluru", "Pune", "Hyderabad", "Remote", "Singapore", "Shanghai"}
	seedSkills      = []string{"Go", "PostgreSQL", "Redis", "React", "TypeScript", "Docker", "Kubernetes", "Python", "SQL"}
)

func pick(options []string) string {
	return options[mrand.IntN(len(options))]
}

func GenerateRandomCandidate(passwordHash, emailDomainName string) *domain.Candidate {
	first, last := GenerateRandomName()
	age := int32(mrand.IntN(20) + 21)

	skills := append([]string{}, seedSkills...)
	mrand.Shuffle(len(skills), func(i, j int) { skills[i], skills[j] = skills[j], skills[i] })

	return &domain.Candidate{
		Email:           GenerateEmail(first, last, emailDomainName),
		FirstName:       first,
		LastName:        last,
		PasswordHash:    passwordHash,
		Age:             &age,
		CurrentRole:     pick(seedRoles),
		TotalExperience: fmt.Sprintf("%d years", mrand.IntN(12)),
		Location:        pick(seedLocations),
		ExpectedCTC:     fmt.Sprintf("%d LPA", mrand.IntN(40)+5),
		Skills:          skills[:mrand.IntN(4)+2],
		ReadyToRelocate: mrand.IntN(2) == 0,
	}
}

func GenerateRandomHR(passwordHash, emailDomainName string, scope domain.Scope) *domain.HRAccount {
	first, last := GenerateRandomName()
	return &domain.HRAccount{
		Email:        GenerateEmail(first, last, emailDomainName),
		FirstName:    first,
		LastName:     last,
		PasswordHash: passwordHash,
		Scope:        scope,
		Designation:  pick([]string{"Talent Partner", "Recruiter", "HR Manager", "HR Business Partner"}),
	}
}

func GenerateRandomJob(hrID string) *domain.Job {
	role := pick(seedRoles)
	status := domain.JobStatusActive
	if mrand.IntN(5) == 0 {
		status = domain.JobStatusInactive
	}

	return &domain.Job{
		HRID:        hrID,
		Role:        role,
		Designation: pick([]string{"Junior", "Mid", "Senior", "Lead"}) + " " + role,
		Department:  pick(seedDepartments),
		Location:    pick(seedLocations),
		Experience:  fmt.Sprintf("%d-%d years", mrand.IntN(3), mrand.IntN(5)+3),
		Status:      status,
		Description: "We are hiring a " + strings.ToLower(role) + " to join the " + pick(seedDepartments) + " team.",
	}
}

// GenerateRandomOTP returns a 6 digit code from crypto/rand.
func GenerateRandomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) (string, error) {
	password := make([]rune, length)
	bound := big.NewInt(int64(len(letters)))
	for i := range password {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", err
		}
		password[i] = letters[n.Int64()]
	}
	return string(password), nil
}
