package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// LeadPage holds the fields written to the Notion leads database. The caller
// maps its own lead type into this struct so this package stays free of
// application imports.
type LeadPage struct {
	Name     string
	Category string
	City     string
	State    string
	Phone    string
	Email    string
	Website  string
	Status   string

	Total        int
	Need         int
	Value        int
	Reachability int
	Reasons      []string
}

// CreateLeadPage creates one page in the leads database.
func CreateLeadPage(ctx context.Context, c Client, dbID string, lead LeadPage) (*notionapi.Page, error) {
	if lead.Name == "" {
		return nil, eris.New("notion: lead name is required")
	}
	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: buildLeadProperties(lead),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: create lead page %q", lead.Name)
	}
	return page, nil
}

// FindLeadPage looks up an existing page by exact title match. Returns nil
// when the database has no page with that name.
func FindLeadPage(ctx context.Context, c Client, dbID, name string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Name",
			RichText: &notionapi.TextFilterCondition{Equals: name},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find lead page %q", name)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// UpsertLeadPage creates the page, or updates the existing one when a page
// with the same name already exists. Returns whether a new page was created.
func UpsertLeadPage(ctx context.Context, c Client, dbID string, lead LeadPage) (bool, error) {
	existing, err := FindLeadPage(ctx, c, dbID, lead.Name)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := CreateLeadPage(ctx, c, dbID, lead)
		return err == nil, err
	}
	_, err = c.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
		Properties: buildLeadProperties(lead),
	})
	if err != nil {
		return false, eris.Wrapf(err, "notion: update lead page %q", lead.Name)
	}
	return false, nil
}

func buildLeadProperties(lead LeadPage) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(lead.Name),
		},
		"Total": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(lead.Total),
		},
		"Need": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(lead.Need),
		},
		"Value": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(lead.Value),
		},
		"Reachability": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(lead.Reachability),
		},
	}

	if lead.Status != "" {
		props["Status"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: lead.Status},
		}
	}
	if lead.Website != "" {
		props["Website"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  lead.Website,
		}
	}
	if lead.Phone != "" {
		props["Phone"] = notionapi.PhoneNumberProperty{
			Type:        notionapi.PropertyTypePhoneNumber,
			PhoneNumber: lead.Phone,
		}
	}
	if lead.Email != "" {
		props["Email"] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: lead.Email,
		}
	}
	if lead.Category != "" {
		props["Category"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(lead.Category),
		}
	}
	if loc := formatLocation(lead.City, lead.State); loc != "" {
		props["Location"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(loc),
		}
	}
	if len(lead.Reasons) > 0 {
		props["Score Reasons"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(strings.Join(lead.Reasons, "; ")),
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

func formatLocation(city, state string) string {
	switch {
	case city != "" && state != "":
		return city + ", " + state
	case city != "":
		return city
	default:
		return state
	}
}
