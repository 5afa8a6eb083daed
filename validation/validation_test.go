package validation

import (
	"testing"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Asha Rao",
		Address:    "12 MG Road",
		City:       "Pune",
		PostalCode: "411001",
		Country:    "India",
		Phone:      "+91 (20) 555-0101",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	fields := apperror.Fields(err)
	require.NotEmpty(t, fields)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func TestShippingAddress(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(validAddress()))
	})

	t.Run("every blank field reported", func(t *testing.T) {
		err := Struct(models.ShippingAddress{})
		assert.ElementsMatch(t,
			[]string{"fullName", "address", "city", "postalCode", "country", "phone"},
			fieldNames(t, err))
	})

	t.Run("phone characters", func(t *testing.T) {
		a := validAddress()
		a.Phone = "call me maybe"
		err := Struct(a)
		require.Error(t, err)
		fields := apperror.Fields(err)
		require.Len(t, fields, 1)
		assert.Equal(t, "phone", fields[0].Field)
		assert.Equal(t, "Please provide a valid phone number", fields[0].Message)
	})

	t.Run("phone length", func(t *testing.T) {
		for _, phone := range []string{"12345", "123456789012345678901"} {
			a := validAddress()
			a.Phone = phone
			fields := apperror.Fields(Struct(a))
			require.Len(t, fields, 1, phone)
			assert.Equal(t, "Phone number must be between 7 and 20 characters", fields[0].Message)
		}
	})
}

func TestPrefix(t *testing.T) {
	a := validAddress()
	a.City = ""
	err := Prefix(Struct(a), "shippingAddress")
	assert.Equal(t, []string{"shippingAddress.city"}, fieldNames(t, err))
	assert.Nil(t, Prefix(nil, "x"))
}

func TestProductInput(t *testing.T) {
	price := 10.5
	stock := 3
	negative := -1.0

	valid := models.ProductInput{
		Name:        "Yoga Mat",
		Description: "Non-slip",
		Price:       &price,
		Category:    models.CategorySports,
		Stock:       &stock,
		Rating:      4.5,
	}
	assert.NoError(t, Struct(valid))

	missing := models.ProductInput{Name: "x", Description: "y", Category: models.CategoryBooks}
	assert.ElementsMatch(t, []string{"price", "stock"}, fieldNames(t, Struct(missing)))

	bad := valid
	bad.Price = &negative
	bad.Category = "Groceries"
	bad.Rating = 6
	assert.ElementsMatch(t, []string{"price", "category", "rating"}, fieldNames(t, Struct(bad)))
}
