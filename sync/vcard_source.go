// ABOUTME: Offline contact source backed by a vCard file
// ABOUTME: Decodes .vcf exports and serves them as paginated contact pages
package sync

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/emersion/go-vcard"
	"google.golang.org/api/people/v1"
)

// vcardDatePattern matches a BDAY date: YYYY-MM-DD, YYYYMMDD, --MM-DD or
// --MMDD, optionally followed by a time. The year-less forms produce a
// birthday without year, which the pipeline treats as no birthday.
var vcardDatePattern = regexp.MustCompile(`^(\d{4}|--)-?(\d{2})-?(\d{2})(?:T.*)?$`)

// VCardSource serves contacts from a local vCard file. Page tokens are
// offsets into the file's cards.
type VCardSource struct {
	Path string

	people []*people.Person
}

// NewVCardSource creates a source for the file at path.
func NewVCardSource(path string) *VCardSource {
	return &VCardSource{Path: path}
}

// ListContacts returns one page of cards. The file is read again whenever
// the first page is requested.
func (s *VCardSource) ListContacts(ctx context.Context, req ContactPageRequest) (*ContactPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := 0
	if req.PageToken == "" || s.people == nil {
		loaded, err := s.load()
		if err != nil {
			return nil, err
		}
		s.people = loaded
	}
	if req.PageToken != "" {
		n, err := strconv.Atoi(req.PageToken)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid page token %q", req.PageToken)
		}
		offset = n
	}

	size := int(req.PageSize)
	if size <= 0 {
		size = len(s.people)
	}

	if offset >= len(s.people) {
		return &ContactPage{}, nil
	}

	end := min(offset+size, len(s.people))
	page := &ContactPage{People: s.people[offset:end]}
	if end < len(s.people) {
		page.NextPageToken = strconv.Itoa(end)
	}

	return page, nil
}

func (s *VCardSource) load() ([]*people.Person, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeVCards(f)
}

// DecodeVCards converts every card in r into a People API person so the
// regular contact pipeline can consume it.
func DecodeVCards(r io.Reader) ([]*people.Person, error) {
	decoder := vcard.NewDecoder(r)

	var persons []*people.Person
	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return persons, fmt.Errorf("failed to parse vCard stream: %w", err)
		}
		persons = append(persons, cardToPerson(card))
	}

	return persons, nil
}

func cardToPerson(card vcard.Card) *people.Person {
	name := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
	if name == "" {
		if n := card.Name(); n != nil {
			name = strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
		}
	}

	bday := strings.TrimSpace(card.PreferredValue(vcard.FieldBirthday))

	p := &people.Person{ResourceName: cardIdentity(card, name, bday)}
	if name != "" {
		p.Names = []*people.Name{{DisplayName: name}}
	}
	if date, ok := parseVCardDate(bday); ok {
		p.Birthdays = []*people.Birthday{{Date: date, Text: bday}}
	}

	return p
}

// cardIdentity derives a stable identity from the card UID, or from name
// and birthday when the card has none. The result is lowercase hex so
// the derived event ID stays within the calendar's allowed alphabet.
func cardIdentity(card vcard.Card, name, bday string) string {
	input := card.PreferredValue(vcard.FieldUID)
	if input == "" {
		input = name + "|" + bday
	}
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:16])
}

// parseVCardDate splits a BDAY value into its components. Range checks
// are left to models.NewBirthday so Feb 29 is kept in any year.
func parseVCardDate(value string) (*people.Date, bool) {
	m := vcardDatePattern.FindStringSubmatch(value)
	if m == nil {
		return nil, false
	}

	date := &people.Date{}
	if m[1] != "--" {
		year, _ := strconv.Atoi(m[1])
		date.Year = int64(year)
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	date.Month = int64(month)
	date.Day = int64(day)

	return date, true
}
