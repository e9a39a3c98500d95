package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"watchflip/internal/domain"
	"watchflip/internal/query"
	"watchflip/internal/validate"
)

// listParams is the parsed form of the list/export query string.
type listParams struct {
	Criteria query.Criteria
	Sort     query.Sort
	Page     int
	Size     int
	Raw      domain.SearchFilters
}

func parseList(c *fiber.Ctx) (listParams, error) {
	v := validate.Violations{}
	p := listParams{Sort: query.DefaultSort, Page: validate.Page(c.Query("page")), Criteria: query.Criteria{Now: time.Now()}}
	raw := domain.SearchFilters{
		Search:   strings.TrimSpace(c.Query("q")),
		Status:   strings.TrimSpace(c.Query("status")),
		Brand:    strings.TrimSpace(c.Query("brand")),
		Tag:      strings.TrimSpace(c.Query("tag")),
		Quick:    strings.TrimSpace(c.Query("quick")),
		MinPrice: strings.TrimSpace(c.Query("min")),
		MaxPrice: strings.TrimSpace(c.Query("max")),
		From:     strings.TrimSpace(c.Query("from")),
		To:       strings.TrimSpace(c.Query("to")),
		Sort:     strings.TrimSpace(c.Query("sort")),
	}
	raw.ProfitableOnly = c.QueryBool("profitable", false)
	raw.Desc = strings.EqualFold(c.Query("dir"), "desc")
	p.Raw = raw

	// Free text never fails; whatever survives cleaning is searched.
	if q, ok := validate.Q(raw.Search); ok {
		p.Criteria.Search = q
	}
	if raw.Status != "" && raw.Status != "all" {
		st, ok := domain.ParseStatus(raw.Status)
		if !ok {
			v["status"] = validate.CodeInvalidStatus
		}
		p.Criteria.Status = st
	}
	if len(raw.Brand) > 100 {
		v["brand"] = validate.CodeTooLong
	}
	p.Criteria.Brand = raw.Brand
	if raw.Tag != "" {
		tag, ok := validate.Tag(raw.Tag)
		if !ok {
			v["tag"] = validate.CodeInvalid
		}
		p.Criteria.Tag = tag
	}
	switch q := query.Quick(raw.Quick); q {
	case query.QuickNone, query.QuickHighProfit, query.QuickHighROI, query.QuickLowCost, query.QuickRecent, query.QuickFavorites:
		p.Criteria.Quick = q
	default:
		v["quick"] = validate.CodeInvalid
	}
	p.Criteria.ProfitableOnly = raw.ProfitableOnly
	p.Criteria.MinPrice = moneyParam("min", raw.MinPrice, v)
	p.Criteria.MaxPrice = moneyParam("max", raw.MaxPrice, v)
	p.Criteria.From = dateParam("from", raw.From, v)
	p.Criteria.To = dateParam("to", raw.To, v)

	if f := query.Field(raw.Sort); f.Valid() {
		p.Sort = query.Sort{Field: f, Desc: raw.Desc}
	} else if raw.Sort == "" {
		p.Sort.Desc = raw.Desc
	} else {
		v["sort"] = validate.CodeInvalid
	}
	size, _ := strconv.Atoi(c.Query("size"))
	p.Size = query.NormalizePageSize(size)
	return p, v.Err()
}

func moneyParam(field, s string, v validate.Violations) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil || d.IsNegative() {
		v[field] = validate.CodeInvalid
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func dateParam(field, s string, v validate.Violations) *time.Time {
	if s == "" {
		return nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		v[field] = validate.CodeInvalidDate
		return nil
	}
	return &t
}

// idsBody is the shared shape of bulk requests.
type idsBody struct {
	IDs []string `json:"ids"`
}
