// Package cart holds the shopping cart kept in the visitor's session.
package cart

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/Beerzinss/DatKomp/internal/models"
	"github.com/Beerzinss/DatKomp/internal/store"
	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"
)

const (
	SessionName = "cart-session"
	sessionKey  = "cart"
)

func init() {
	gob.Register(Cart{})
}

// Item is a product snapshot taken when it was added.
type Item struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  string
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	Items []Item
}

// Add puts one unit of p in the cart, keeping position and price of an existing line.
func (c *Cart) Add(p models.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
		ImageURL:  p.ImageURL,
	})
}

// Increment reports whether the product was in the cart.
func (c *Cart) Increment(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity++
	return true
}

// Decrement drops the line once its quantity reaches zero.
func (c *Cart) Decrement(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity--
	if c.Items[i].Quantity <= 0 {
		c.removeAt(i)
	}
	return true
}

func (c *Cart) Remove(productID int64) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Lines converts the cart into order lines.
func (c *Cart) Lines() []store.LineInput {
	lines := make([]store.LineInput, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, store.LineInput{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
		})
	}
	return lines
}

func (c *Cart) index(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// NewStore keeps cart sessions as files under dir; only the session id
// travels in the cookie, so the cart size is not bound by cookie limits.
func NewStore(dir string, opts sessions.Options, keyPairs ...[]byte) (*sessions.FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cart session dir: %w", err)
	}
	fs := sessions.NewFilesystemStore(dir, keyPairs...)
	fs.MaxLength(0)
	o := opts
	fs.Options = &o
	fs.MaxAge(o.MaxAge)
	return fs, nil
}

// Load reads the cart from the session; a missing or unreadable value is an empty cart.
func Load(session *sessions.Session) *Cart {
	if c, ok := session.Values[sessionKey].(Cart); ok {
		return &c
	}
	return &Cart{}
}

// Save stores c in the session. The caller still has to save the session.
func Save(session *sessions.Session, c *Cart) {
	if c.IsEmpty() {
		delete(session.Values, sessionKey)
		return
	}
	session.Values[sessionKey] = *c
}
