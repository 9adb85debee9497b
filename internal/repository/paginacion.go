package repository

import (
	"strings"
	"time"

	"caffito/internal/dto"

	"gorm.io/gorm"
)

// paginar applies sort, offset and limit. Sort fields are looked up in
// columnas so user input never reaches the ORDER BY clause verbatim.
func paginar(q *gorm.DB, p dto.Paginacion, columnas map[string]string, porDefecto string) *gorm.DB {
	p = p.Normalizar()
	orden := porDefecto
	if p.Sort != "" {
		campo, dir, _ := strings.Cut(p.Sort, ",")
		if col, ok := columnas[strings.TrimSpace(campo)]; ok {
			orden = col + " ASC"
			if strings.EqualFold(strings.TrimSpace(dir), "desc") {
				orden = col + " DESC"
			}
		}
	}
	return q.Order(orden).Offset(p.Offset()).Limit(p.Size)
}

// contiene builds an ILIKE pattern for a case-insensitive substring match.
func contiene(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// rangoFechas filters col by inclusive calendar days in YYYY-MM-DD form.
// Malformed values are ignored; handlers validate them beforehand.
func rangoFechas(q *gorm.DB, col, desde, hasta string) *gorm.DB {
	if d, err := time.Parse(time.DateOnly, desde); err == nil {
		q = q.Where(col+" >= ?", d)
	}
	if h, err := time.Parse(time.DateOnly, hasta); err == nil {
		q = q.Where(col+" < ?", h.AddDate(0, 0, 1))
	}
	return q
}
