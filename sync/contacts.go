// ABOUTME: Paginated contact pipeline feeding the birthday sync
// ABOUTME: Lazily fetches contact pages and yields named contacts with validated birthdays
package sync

import (
	"context"
	"iter"

	"github.com/charmbracelet/log"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/gcalsync/config"
	"github.com/harperreed/gcalsync/models"
)

// PersonFields lists the fields requested for every contact. Nicknames are
// not used yet.
const PersonFields = "names,nicknames,birthdays"

// ContactPageRequest asks a ContactSource for one page.
type ContactPageRequest struct {
	PageSize     int64
	PersonFields string
	PageToken    string
}

// ContactPage is one page of raw directory entries. An empty NextPageToken
// means there are no further pages.
type ContactPage struct {
	People        []*people.Person
	NextPageToken string
}

// ContactSource is a paginated contacts directory.
type ContactSource interface {
	ListContacts(ctx context.Context, req ContactPageRequest) (*ContactPage, error)
}

// PipelineStats counts what a pipeline run saw.
type PipelineStats struct {
	Pages    int
	Entries  int
	Nameless int
	Yielded  int
}

// ContactPipeline turns a paginated source into a sequence of contacts.
type ContactPipeline struct {
	source   ContactSource
	pageSize int64
	logger   *log.Logger

	stats PipelineStats
	err   error
}

// NewContactPipeline creates a pipeline. A non-positive page size uses
// config.DefaultPageSize.
func NewContactPipeline(source ContactSource, pageSize int64, logger *log.Logger) *ContactPipeline {
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}
	return &ContactPipeline{
		source:   source,
		pageSize: pageSize,
		logger:   logger.With("component", "contacts"),
	}
}

// Contacts returns the contact sequence. Every call starts again from the
// first page. A fetch error ends the sequence early; it is logged and kept
// in Err but never surfaced to the consumer as a failure.
func (p *ContactPipeline) Contacts(ctx context.Context) iter.Seq[models.Contact] {
	return func(yield func(models.Contact) bool) {
		p.stats = PipelineStats{}
		p.err = nil

		pageToken := ""
		for {
			if err := ctx.Err(); err != nil {
				p.stop(err)
				return
			}

			page, err := p.source.ListContacts(ctx, ContactPageRequest{
				PageSize:     p.pageSize,
				PersonFields: PersonFields,
				PageToken:    pageToken,
			})
			if err != nil {
				p.stop(err)
				return
			}
			if page == nil {
				p.logger.Warn("contact source returned no page", "pages", p.stats.Pages)
				return
			}

			p.stats.Pages++
			p.logger.Debug("fetched contact page", "page", p.stats.Pages, "entries", len(page.People))

			for _, person := range page.People {
				p.stats.Entries++

				contact, ok := convertPerson(person)
				if !ok {
					p.stats.Nameless++
					p.logger.Warn("skipping person with no name", "resource", resourceName(person))
					continue
				}

				p.stats.Yielded++
				if !yield(contact) {
					return
				}
			}

			pageToken = page.NextPageToken
			if pageToken == "" {
				return
			}
		}
	}
}

// Collect drains the sequence into a slice.
func (p *ContactPipeline) Collect(ctx context.Context) []models.Contact {
	var contacts []models.Contact
	for c := range p.Contacts(ctx) {
		contacts = append(contacts, c)
	}
	return contacts
}

// Err returns the fetch error that ended the last run early, if any.
func (p *ContactPipeline) Err() error {
	return p.err
}

// Stats returns counters for the last run.
func (p *ContactPipeline) Stats() PipelineStats {
	return p.stats
}

func (p *ContactPipeline) stop(err error) {
	p.err = err
	p.logger.Warn("contact fetch stopped early", "pages", p.stats.Pages, "err", err)
}

// convertPerson converts a People API person to a Contact. It returns
// false when the person has no display name.
func convertPerson(person *people.Person) (models.Contact, bool) {
	if person == nil || len(person.Names) == 0 || person.Names[0] == nil || person.Names[0].DisplayName == "" {
		return models.Contact{}, false
	}

	contact := models.Contact{
		ResourceName: person.ResourceName,
		Name:         person.Names[0].DisplayName,
	}

	if len(person.Birthdays) > 0 && person.Birthdays[0] != nil {
		if date := person.Birthdays[0].Date; date != nil {
			if b, err := models.NewBirthday(int(date.Year), int(date.Month), int(date.Day)); err == nil {
				contact.Birthday = &b
			}
		}
	}

	return contact, true
}

func resourceName(person *people.Person) string {
	if person == nil {
		return ""
	}
	return person.ResourceName
}
