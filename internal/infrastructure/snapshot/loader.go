// Package snapshot owns dataset loading and the lifecycle of the in-memory
// snapshot: build at startup, atomic swap on rebuild, hot-reload when the
// dataset file changes.
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Source yields the raw business records a snapshot is built from.
type Source interface {
	Load(ctx context.Context) ([]market.BusinessRecord, error)
}

// FileSource reads a yelp-style business dataset from disk, either a JSON
// array or newline-delimited JSON objects.
type FileSource struct {
	// Path is the dataset file.
	Path string

	// State keeps only records from one US state; empty keeps everything.
	State string
}

// Load parses the dataset file into business records.
func (f FileSource) Load(_ context.Context) ([]market.BusinessRecord, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatasetMissing,
				fmt.Sprintf("dataset file %s not found", f.Path))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "read dataset file")
	}

	var dtos []recordDTO
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "parse dataset json array")
		}
	} else {
		sc := bufio.NewScanner(bytes.NewReader(raw))
		sc.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
		line := 0
		for sc.Scan() {
			line++
			text := strings.TrimSpace(sc.Text())
			if text == "" {
				continue
			}
			var dto recordDTO
			if err := json.Unmarshal([]byte(text), &dto); err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad,
					fmt.Sprintf("parse dataset line %d", line))
			}
			dtos = append(dtos, dto)
		}
		if err := sc.Err(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "scan dataset file")
		}
	}

	var out []market.BusinessRecord
	for _, dto := range dtos {
		if f.State != "" && dto.State != "" && dto.State != f.State {
			continue
		}
		out = append(out, dto.toRecord())
	}
	return out, nil
}

// recordDTO mirrors the dataset's business schema.
type recordDTO struct {
	BusinessID  string            `json:"business_id"`
	Name        string            `json:"name"`
	City        string            `json:"city"`
	State       string            `json:"state"`
	PostalCode  string            `json:"postal_code"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	Stars       float64           `json:"stars"`
	ReviewCount int               `json:"review_count"`
	IsOpen      int               `json:"is_open"`
	Categories  string            `json:"categories"`
	Attributes  map[string]string `json:"attributes"`
}

func (d recordDTO) toRecord() market.BusinessRecord {
	r := market.BusinessRecord{
		ID:          d.BusinessID,
		Name:        d.Name,
		City:        d.City,
		Zip:         d.PostalCode,
		Cuisines:    market.CuisinesFromCategories(d.Categories),
		Stars:       d.Stars,
		ReviewCount: d.ReviewCount,
		Open:        d.IsOpen != 0,
		Attributes:  make(map[market.Attribute]bool),
		Noise:       market.ParseNoiseLevel(cleanAttr(d.Attributes["NoiseLevel"])),
	}
	if d.Latitude != nil && d.Longitude != nil {
		r.Location = &geo.Point{Lat: *d.Latitude, Lon: *d.Longitude}
	}
	if tier, err := strconv.Atoi(cleanAttr(d.Attributes["RestaurantsPriceRange2"])); err == nil {
		r.PriceTier = tier
	}

	set := func(a market.Attribute, on bool) {
		if on {
			r.Attributes[a] = true
		}
	}
	set(market.AttrDelivery, attrTrue(d.Attributes["RestaurantsDelivery"]))
	set(market.AttrOutdoorSeating, attrTrue(d.Attributes["OutdoorSeating"]))
	set(market.AttrBYOB, attrTrue(d.Attributes["BYOB"]) || byobCorkageTrue(d.Attributes["BYOBCorkage"]))
	set(market.AttrKidFriendly, attrTrue(d.Attributes["GoodForKids"]))
	set(market.AttrLateNight, attrTrue(d.Attributes["HappyHour"]))
	set(market.AttrWifi, wifiTrue(d.Attributes["WiFi"]))
	set(market.AttrReservations, attrTrue(d.Attributes["RestaurantsReservations"]))
	set(market.AttrAlcohol, alcoholTrue(d.Attributes["Alcohol"]))
	set(market.AttrTV, attrTrue(d.Attributes["HasTV"]))
	set(market.AttrGoodForGroups, attrTrue(d.Attributes["RestaurantsGoodForGroups"]))
	return r
}

// cleanAttr strips the python-repr noise the dataset carries ("u'free'",
// "'none'") down to the bare token.
func cleanAttr(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "u'")
	s = strings.Trim(s, "'\"")
	return s
}

func attrTrue(s string) bool {
	return strings.EqualFold(cleanAttr(s), "true")
}

// wifiTrue treats any wifi offering (free or paid) as wifi available.
func wifiTrue(s string) bool {
	switch strings.ToLower(cleanAttr(s)) {
	case "free", "paid":
		return true
	default:
		return false
	}
}

// alcoholTrue treats any license (full bar or beer and wine) as alcohol
// served.
func alcoholTrue(s string) bool {
	switch strings.ToLower(cleanAttr(s)) {
	case "full_bar", "beer_and_wine":
		return true
	default:
		return false
	}
}

// byobCorkageTrue maps the dataset's "yes_free"/"yes_corkage"/"no" values.
func byobCorkageTrue(s string) bool {
	switch strings.ToLower(cleanAttr(s)) {
	case "yes_free", "yes_corkage":
		return true
	default:
		return false
	}
}
