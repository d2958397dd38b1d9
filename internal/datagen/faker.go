//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

// Package datagen provides fake data generation for seeding the warehouse.
package datagen

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker wraps gofakeit for the publishing domain.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Name generates a random full name.
func (f *Faker) Name() string {
	return f.faker.Name()
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// Country generates a random country name.
func (f *Faker) Country() string {
	return f.faker.Country()
}

// BookTitle generates a plausible book title.
func (f *Faker) BookTitle() string {
	return f.faker.BookTitle()
}

// Sentence generates a random sentence.
func (f *Faker) Sentence(wordCount int) string {
	return f.faker.Sentence(wordCount)
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Int64 generates a random int64 between min and max (inclusive).
func (f *Faker) Int64(min, max int64) int64 {
	return int64(f.faker.IntRange(int(min), int(max)))
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Bool generates a random boolean.
func (f *Faker) Bool() bool {
	return f.faker.Bool()
}

// DateRange generates a random date within a range.
func (f *Faker) DateRange(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Digits generates a random string of digits of length n.
func (f *Faker) Digits(n int) string {
	return f.faker.DigitN(uint(n))
}

// EditionID generates an edition identifier like "E04217".
func (f *Faker) EditionID() string {
	return "E" + f.faker.DigitN(5)
}

// SaleNumber generates a sale number like "S-2024-0041372".
func (f *Faker) SaleNumber(year int) string {
	return fmt.Sprintf("S-%d-%s", year, f.faker.DigitN(7))
}

// StationCode generates a station code like "STN-07".
func StationCode(n int) string {
	return fmt.Sprintf("STN-%02d", n)
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}
