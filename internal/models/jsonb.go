package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Composite values live in JSONB columns. Each type below round-trips
// through database/sql via Value and Scan.

type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) Value() (driver.Value, error) { return json.Marshal(a) }
func (a *Address) Scan(src any) error         { return scanJSON(src, a) }

type Color struct {
	Name      string `json:"name"`
	Hex       string `json:"hex,omitempty"`
	Available *bool  `json:"available,omitempty"`
}

func (c Color) Value() (driver.Value, error) { return json.Marshal(c) }
func (c *Color) Scan(src any) error         { return scanJSON(src, c) }

type Customization struct {
	Text          string `json:"text,omitempty"`
	TextPlacement string `json:"textPlacement,omitempty"`
	CustomImage   string `json:"customImage,omitempty"`
	CustomColor   string `json:"customColor,omitempty"`
	OutfitType    string `json:"outfitType,omitempty"`
	DesignName    string `json:"designName,omitempty"`
}

func (c Customization) Value() (driver.Value, error) { return json.Marshal(c) }
func (c *Customization) Scan(src any) error         { return scanJSON(src, c) }

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type ImageList []Image

func (l ImageList) Value() (driver.Value, error) { return marshalList(l) }
func (l *ImageList) Scan(src any) error         { return scanJSON(src, l) }

type ColorList []Color

func (l ColorList) Value() (driver.Value, error) { return marshalList(l) }
func (l *ColorList) Scan(src any) error         { return scanJSON(src, l) }

type SizeOption struct {
	Name      Size `json:"name"`
	Available bool `json:"available"`
	Stock     int  `json:"stock"`
}

type SizeList []SizeOption

func (l SizeList) Value() (driver.Value, error) { return marshalList(l) }
func (l *SizeList) Scan(src any) error         { return scanJSON(src, l) }

type StringList []string

func (l StringList) Value() (driver.Value, error) { return marshalList(l) }
func (l *StringList) Scan(src any) error         { return scanJSON(src, l) }

func marshalList[T any](l []T) (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("scan jsonb: unsupported source type %T", src)
	}
}
