// internal/steps/hotels/models.go
package hotels

import "errors"

var errNoHotels = errors.New("no hotels found for city")
