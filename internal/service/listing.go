package service

import (
	"errors"
	"strings"

	"emarket/internal/models"

	"github.com/go-playground/validator/v10"
)

// DefaultCategory is used when a listing names none
const DefaultCategory = "General"

// ListingRequest is a seller's new book submission
type ListingRequest struct {
	Title         string  `json:"title" validate:"notblank"`
	Author        string  `json:"author" validate:"notblank"`
	MRP           float64 `json:"mrp" validate:"gt=0"`
	Price         float64 `json:"price" validate:"gt=0,ltefield=MRP"`
	Synopsis      string  `json:"synopsis" validate:"notblank"`
	Category      string  `json:"category"`
	CoverURL      string  `json:"coverUrl" validate:"notblank"`
	PdfURL        string  `json:"pdfUrl" validate:"notblank"`
	Mobile        string  `json:"mobile" validate:"notblank"`
	UpiID         string  `json:"upiId"`
	QRCodeURL     string  `json:"qrCodeUrl"`
	AccountHolder string  `json:"accountHolder" validate:"notblank"`
	BankAccount   string  `json:"bankAccount" validate:"notblank"`
	IFSC          string  `json:"ifsc" validate:"notblank"`
	KycAgreed     bool    `json:"kycAgreed" validate:"required"`
}

var listingMessages = map[string]string{
	"Title":         "Please enter the book title.",
	"Author":        "Please enter the author's name.",
	"MRP":           "Please enter a valid MRP.",
	"Price":         "Please enter a valid Selling Price.",
	"Synopsis":      "Please enter a description.",
	"CoverURL":      "Please upload a cover image.",
	"PdfURL":        "Please upload the eBook PDF file.",
	"Mobile":        "Mobile number is required.",
	"AccountHolder": "Account Holder Name is required.",
	"BankAccount":   "Bank Account Number is required.",
	"IFSC":          "IFSC Code is required.",
	"KycAgreed":     "You must agree to the KYC declaration.",
}

const priceAboveMRPMessage = "Selling Price cannot be higher than MRP."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the request in form order and reports the first problem
func (r *ListingRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("", err.Error())
	}

	first := verrs[0]
	if first.Field() == "Price" && first.Tag() == "ltefield" {
		return models.NewValidationError("price", priceAboveMRPMessage)
	}
	msg, ok := listingMessages[first.Field()]
	if !ok {
		msg = first.Error()
	}
	return models.NewValidationError(strings.ToLower(first.Field()), msg)
}

// book builds the listing's catalog entry. Sellers are KYC verified by
// agreeing to the declaration.
func (r *ListingRequest) book(id string) models.Book {
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = DefaultCategory
	}
	return models.Book{
		ID:       id,
		Title:    strings.TrimSpace(r.Title),
		Author:   strings.TrimSpace(r.Author),
		Price:    r.Price,
		MRP:      r.MRP,
		CoverURL: r.CoverURL,
		Synopsis: strings.TrimSpace(r.Synopsis),
		Category: category,
		PdfURL:   r.PdfURL,
		Seller: models.SellerInfo{
			Mobile:        strings.TrimSpace(r.Mobile),
			UpiID:         strings.TrimSpace(r.UpiID),
			QRCodeURL:     r.QRCodeURL,
			BankAccount:   strings.TrimSpace(r.BankAccount),
			IFSC:          strings.TrimSpace(r.IFSC),
			AccountHolder: strings.TrimSpace(r.AccountHolder),
			IsKycVerified: true,
		},
	}
}
