package transform

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/emersion/go-vcard"
	"google.golang.org/api/people/v1"
)

const (
	vcardVersion     = "3.0"
	defaultPhoneType = "home"
)

// PersonFields is the personFields mask requested from the People API.
const PersonFields = "names,addresses,phoneNumbers,emailAddresses,birthdays,organizations,nicknames,photos,metadata"

// PhotoFetcher downloads a contact photo through the authenticated client.
type PhotoFetcher func(ctx context.Context, url string) ([]byte, error)

// PersonToCard builds a vCard for person. It returns false when the person
// has no name, in which case nothing should be written.
func PersonToCard(ctx context.Context, person *people.Person, fetch PhotoFetcher) (vcard.Card, bool) {
	if person == nil || len(person.Names) == 0 {
		return nil, false
	}

	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, vcardVersion)
	if person.ResourceName != "" {
		card.SetValue(vcard.FieldUID, person.ResourceName)
	}

	name := person.Names[0]
	card.SetValue(vcard.FieldFormattedName, formattedName(name))
	card.AddName(&vcard.Name{
		FamilyName:      name.FamilyName,
		GivenName:       name.GivenName,
		AdditionalName:  name.MiddleName,
		HonorificPrefix: name.HonorificPrefix,
		HonorificSuffix: name.HonorificSuffix,
	})

	for _, a := range person.Addresses {
		if a == nil {
			continue
		}
		card.AddAddress(&vcard.Address{
			Field:           &vcard.Field{Params: typeParam(strings.ToLower(a.Type))},
			PostOfficeBox:   a.PoBox,
			ExtendedAddress: a.ExtendedAddress,
			StreetAddress:   a.StreetAddress,
			Locality:        a.City,
			Region:          a.Region,
			PostalCode:      a.PostalCode,
			Country:         a.Country,
		})
	}

	for _, p := range person.PhoneNumbers {
		if p == nil || p.Value == "" {
			continue
		}
		card.Add(vcard.FieldTelephone, &vcard.Field{
			Value:  p.Value,
			Params: typeParam(phoneType(p.Type)),
		})
	}

	for _, e := range person.EmailAddresses {
		if e == nil || e.Value == "" {
			continue
		}
		card.Add(vcard.FieldEmail, &vcard.Field{
			Value:  e.Value,
			Params: typeParam(strings.ToLower(e.Type)),
		})
	}

	for _, b := range person.Birthdays {
		if field := birthdayField(b); field != nil {
			card.Add(vcard.FieldBirthday, field)
		}
	}

	for _, o := range person.Organizations {
		if o == nil {
			continue
		}
		if o.Name != "" || o.Department != "" {
			value := o.Name
			if o.Department != "" {
				value += ";" + o.Department
			}
			card.Add(vcard.FieldOrganization, &vcard.Field{Value: value})
		}
		if o.Title != "" {
			card.Add(vcard.FieldTitle, &vcard.Field{Value: o.Title})
		}
	}

	for _, n := range person.Nicknames {
		if n != nil && n.Value != "" {
			card.Add(vcard.FieldNickname, &vcard.Field{Value: n.Value})
		}
	}

	if fetch != nil {
		if field := firstPhoto(ctx, person.Photos, fetch); field != nil {
			card.Add(vcard.FieldPhoto, field)
		}
	}

	return card, true
}

// EncodeCard serializes card as vCard text.
func EncodeCard(card vcard.Card) (string, error) {
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", fmt.Errorf("failed to encode vcard: %w", err)
	}
	return buf.String(), nil
}

func formattedName(name *people.Name) string {
	if name.DisplayName != "" {
		return name.DisplayName
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{name.GivenName, name.FamilyName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// phoneType maps People API phone types onto vCard TYPE values.
func phoneType(t string) string {
	t = strings.ToLower(t)
	switch t {
	case "mobile":
		return "cell"
	case "main", "":
		return defaultPhoneType
	default:
		return t
	}
}

func typeParam(t string) vcard.Params {
	if t == "" {
		return nil
	}
	return vcard.Params{vcard.ParamType: {t}}
}

// birthdayField encodes a full date as YYYY-MM-DD, a date without year as
// the partial date --MMDD and free text as a text value.
func birthdayField(b *people.Birthday) *vcard.Field {
	if b == nil {
		return nil
	}
	if d := b.Date; d != nil && d.Month > 0 && d.Day > 0 {
		if d.Year > 0 {
			return &vcard.Field{Value: fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)}
		}
		return &vcard.Field{Value: fmt.Sprintf("--%02d%02d", d.Month, d.Day)}
	}
	if b.Text != "" {
		return &vcard.Field{
			Value:  b.Text,
			Params: vcard.Params{vcard.ParamValue: {"text"}},
		}
	}
	return nil
}

// firstPhoto returns the first JPEG or PNG photo that downloads.
func firstPhoto(ctx context.Context, photos []*people.Photo, fetch PhotoFetcher) *vcard.Field {
	for _, p := range photos {
		if p == nil || p.Url == "" {
			continue
		}
		imageType := photoType(p.Url)
		if imageType == "" {
			continue
		}
		data, err := fetch(ctx, p.Url)
		if err != nil || len(data) == 0 {
			continue
		}
		return &vcard.Field{
			Value: base64.StdEncoding.EncodeToString(data),
			Params: vcard.Params{
				"ENCODING":      {"b"},
				vcard.ParamType: {imageType},
			},
		}
	}
	return nil
}

func photoType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".jpg", ".jpeg":
		return "JPEG"
	case ".png":
		return "PNG"
	default:
		return ""
	}
}
