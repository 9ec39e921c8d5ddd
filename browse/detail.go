package browse

import (
	"context"
	"errors"
	"strings"

	"github.com/qyinm/offtui/types"
)

// NotFoundMessage is shown when a barcode lookup yields no product.
const NotFoundMessage = "No product details available for this barcode."

// DetailStatus is the lifecycle of one detail lookup.
type DetailStatus int

const (
	DetailLoading DetailStatus = iota
	DetailLoaded
	DetailNotFound
	DetailFailed
)

// Detail is the state of the detail screen for one barcode.
type Detail struct {
	Barcode string
	Status  DetailStatus
	Product types.Product
	Err     error
}

// NewDetail returns a loading detail for barcode.
func NewDetail(barcode string) Detail {
	return Detail{Barcode: strings.TrimSpace(barcode), Status: DetailLoading}
}

// Settled reports whether the lookup has finished.
func (d Detail) Settled() bool { return d.Status != DetailLoading }

// Found reports whether a product is available to render.
func (d Detail) Found() bool { return d.Status == DetailLoaded }

// Resolve records the outcome of the lookup.
func (d Detail) Resolve(product types.Product, err error) Detail {
	switch {
	case err == nil:
		d.Status = DetailLoaded
		d.Product = product
		d.Err = nil
	case errors.Is(err, types.ErrProductNotFound):
		d.Status = DetailNotFound
		d.Err = nil
	default:
		d.Status = DetailFailed
		d.Err = err
	}
	return d
}

// LoadDetail performs one lookup for barcode. It never returns an error;
// failures are recorded on the Detail.
func LoadDetail(ctx context.Context, src types.ProductSource, barcode string) Detail {
	d := NewDetail(barcode)
	if d.Barcode == "" {
		return d.Resolve(types.Product{}, types.ErrProductNotFound)
	}
	product, err := src.GetProduct(ctx, d.Barcode)
	return d.Resolve(product, err)
}
