package services

import (
	"fmt"
	"strconv"
)

// ValidatePaginationParams parses the page and per_page query parameters.
// Empty values fall back to page 1 and the default page size.
func ValidatePaginationParams(pageStr, perPageStr string) (int, int, error) {
	page := 1
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, fmt.Errorf("parâmetro page inválido: deve ser um inteiro positivo")
		}
		page = p
	}

	perPage := defaultPerPage
	if perPageStr != "" {
		pp, err := strconv.Atoi(perPageStr)
		if err != nil || pp < 1 || pp > maxPerPage {
			return 0, 0, fmt.Errorf("parâmetro per_page inválido: deve estar entre 1 e %d", maxPerPage)
		}
		perPage = pp
	}

	return page, perPage, nil
}
