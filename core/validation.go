// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCatalogItem validates a CatalogItem according to domain rules.
//
// Validation rules:
//   - ID and Title must not be empty
//   - Gender must be empty or one of MAN, WOM, BOY, GIR
//   - Text fields must fit the catalog column widths
//   - Color, when present, must be a valid RGB triple
//
// NOT validated:
//   - UpdatedAt (set by the store)
func ValidateCatalogItem(item *CatalogItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidCatalogItem)
	}
	if err := validate.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidCatalogItem, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, err)
	}
	if item.Color != nil {
		if err := item.Color.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalogItem, err)
		}
	}
	return nil
}
