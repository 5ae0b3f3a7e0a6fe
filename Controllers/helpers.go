package Controllers

import (
	"errors"
	"log"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Ledger"
	"CafePOS/Models"
	"CafePOS/Sales"
)

const dateLayout = "2006-01-02"

var (
	validate   = validator.New()
	translator ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		log.Printf("Error registering validator translations: %v", err)
	}
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		messages := make([]string, 0, len(fieldErrors))
		for _, fe := range fieldErrors {
			messages = append(messages, fe.Translate(translator))
		}
		return Models.Invalidf("%s", strings.Join(messages, "; "))
	}
	return Models.Invalidf("%v", err)
}

// parseBody decodes the request body and runs the validate tags on it.
func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return Models.Invalidf("invalid request body: %v", err)
	}
	return validateInput(out)
}

func paramID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id <= 0 {
		return 0, Models.Invalidf("invalid id %q", ctx.Params("id"))
	}
	return uint(id), nil
}

// parseRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD. Both days are included,
// so the returned upper bound is the start of the day after "to".
func parseRange(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := ctx.Query("from"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return from, to, Models.Invalidf("from must look like %s", dateLayout)
		}
		from = t
	}
	if raw := ctx.Query("to"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return from, to, Models.Invalidf("to must look like %s", dateLayout)
		}
		to = t.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, Models.Invalidf("from must not be after to")
	}
	return from, to, nil
}

// respondError maps the error classes to HTTP statuses.
func respondError(ctx *fiber.Ctx, err error) error {
	var stock *Sales.InsufficientStockError
	var unbalanced *Ledger.UnbalancedEntryError

	switch {
	case errors.As(err, &stock):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     err.Error(),
			"shortages": stock.Shortages,
		})
	case errors.As(err, &unbalanced):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":      err.Error(),
			"debit":      unbalanced.Debit.InexactFloat64(),
			"credit":     unbalanced.Credit.InexactFloat64(),
			"difference": unbalanced.Difference.InexactFloat64(),
		})
	case errors.Is(err, Models.ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, Models.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A record with this name already exists"})
	case errors.Is(err, Models.ErrBusinessRule):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("Error handling %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

// sendFile answers with a download.
func sendFile(ctx *fiber.Ctx, data []byte, contentType, filename string) error {
	ctx.Set("Content-Type", contentType)
	ctx.Set("Content-Disposition", "attachment; filename="+filename)
	ctx.Set("Content-Length", strconv.Itoa(len(data)))
	return ctx.Send(data)
}
