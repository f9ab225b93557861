package dialog

import (
	"fmt"
	"math/rand"

	"github.com/flatvoice/go-flatvoice/pkg/catalog"
)

// Canned utterances of the assistant. Listing presentations are always
// templated from catalog data rather than taken from model freeform text,
// so the spoken attributes can never drift from the actual listing.
const (
	respGreeting = "Здравствуйте! Я помогу подобрать квартиру. Расскажите, что вы ищете: район, бюджет, площадь?"
	respHelp     = "Я помогаю подобрать квартиру: назовите район, бюджет, площадь или этаж, и я найду подходящие варианты. Когда вариант понравится, отправлю подробную презентацию."
	respParamAck = "Принято. Что ещё важно: район, площадь, этаж? Или скажите «давай», и я покажу варианты."
	respNoMatch  = "К сожалению, по таким параметрам ничего не нашлось. Может быть, изменим бюджет или посмотрим другой район?"
	respConfirm  = "Отличный выбор! Я отправлю вам подробную презентацию этой квартиры."
	respClarify  = "Уточните, пожалуйста, какая квартира вас заинтересовала? Я пока ничего не показывал."
	respFarewell = "Спасибо за звонок! Всего доброго."
	respApology  = "Извините, я не совсем понял. Повторите, пожалуйста, ещё раз."
)

// Greeting returns the opening line played right after session start.
func Greeting() string { return respGreeting }

// acknowledgements are short fillers spoken while the language model is
// still working. They carry no semantic state.
var acknowledgements = []string{
	"Секунду...",
	"Сейчас посмотрю...",
	"Минутку, смотрю варианты...",
	"Так, сейчас подберу...",
}

// Acknowledgement returns a random latency-masking filler phrase.
func Acknowledgement() string {
	return acknowledgements[rand.Intn(len(acknowledgements))]
}

// presentListing builds the spoken presentation of a search candidate.
func presentListing(l catalog.Listing) string {
	return fmt.Sprintf(
		"Есть вариант в районе %s: %d квадратных метров, %d этаж, цена %s рублей. %s Нравится такой вариант?",
		l.District, l.Area, l.Floor, formatPrice(l.Price), l.Description,
	)
}

// formatPrice renders a ruble amount with thin spacing every three digits,
// the way the synthesis voice reads large numbers most naturally.
func formatPrice(price int) string {
	s := fmt.Sprintf("%d", price)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, d)
	}
	return string(out)
}
