package status

import "fmt"

// Known homework status codes.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"

	// StatusNone stands for "the homework list is empty". It never collides with
	// a real code: anything outside the verdict table fails Translate first.
	StatusNone = "<none>"
)

var verdicts = map[string]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// Verdict returns the human text for a status code.
func Verdict(code string) (string, bool) {
	v, ok := verdicts[code]
	return v, ok
}

// Translate renders the notification text for a homework.
func Translate(h Homework) (string, error) {
	verdict, ok := Verdict(h.Status)
	if !ok {
		return "", &UnknownStatusError{Code: h.Status}
	}
	return fmt.Sprintf("Изменился статус проверки работы \"%s\". %s", h.Name, verdict), nil
}
