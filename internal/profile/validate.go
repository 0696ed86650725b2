package profile

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/openstay/marketplace/backend/internal/models"
)

var phoneRe = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Validate runs the pure field checks for a profile submission and
// returns a map of field name to message. The location is a single
// structured address; its formatted text is the one required part.
func Validate(req *models.ProfileRequest) map[string]string {
	errs := map[string]string{}

	checkName(errs, "first_name", req.FirstName)
	checkName(errs, "last_name", req.LastName)

	if req.PhoneNumber == "" {
		errs["phone_number"] = "phone number is required"
	} else if !phoneRe.MatchString(req.PhoneNumber) {
		errs["phone_number"] = "invalid phone number"
	}

	if strings.TrimSpace(req.Location.FormattedAddress) == "" {
		errs["location"] = "location is required"
	}

	return errs
}

func checkName(errs map[string]string, field, v string) {
	n := utf8.RuneCountInString(strings.TrimSpace(v))
	switch {
	case n == 0:
		errs[field] = field + " is required"
	case n < 2:
		errs[field] = "too short"
	case n > 50:
		errs[field] = "too long"
	}
}
