package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		score    int
		label    string
	}{
		{"", 0, "Sangat Lemah"},
		{"abc", 0, "Sangat Lemah"},
		{"abcdefgh", 1, "Lemah"},
		{"Abcdefgh", 2, "Sedang"},
		{"Abcdefg1", 3, "Sedang"},
		{"abc def1", 3, "Sedang"},
		{"Abcdef1_", 4, "Kuat"},
		{"Abcdef12!", 5, "Sangat Kuat"},
		{"Äöüäöü", 1, "Lemah"},
	}
	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			score := PasswordStrength(tc.password)
			require.Equal(t, tc.score, score)
			require.Equal(t, tc.label, StrengthLabel(score))
		})
	}
}

func TestPasswordStrength_WeakAndStrongBands(t *testing.T) {
	require.LessOrEqual(t, PasswordStrength("abc"), 1)
	require.Contains(t, []string{"Sangat Lemah", "Lemah"}, StrengthLabel(PasswordStrength("abc")))

	require.GreaterOrEqual(t, PasswordStrength("Abcdef12!"), 4)
	require.Contains(t, []string{"Kuat", "Sangat Kuat"}, StrengthLabel(PasswordStrength("Abcdef12!")))
}

func TestPasswordProblem_CountsCharacters(t *testing.T) {
	// Six characters, eight bytes.
	require.Equal(t, "must be at least 8 characters", PasswordProblem("Äb1!cé"))
	require.Empty(t, PasswordProblem("Äbcdé12!"))
}

func TestStrengthLabel_Clamps(t *testing.T) {
	require.Equal(t, "Sangat Lemah", StrengthLabel(-3))
	require.Equal(t, "Sangat Kuat", StrengthLabel(9))
}

func TestIsPhone(t *testing.T) {
	require.True(t, IsPhone("081234567890"))
	require.True(t, IsPhone("+6281234567890"))
	require.True(t, IsPhone("012345678"))
	require.False(t, IsPhone("12345"))
	require.False(t, IsPhone("0812345"))
	require.False(t, IsPhone("+628123456789012"))
	require.False(t, IsPhone("08123abc890"))
}

func TestIsEmail(t *testing.T) {
	require.True(t, IsEmail("a@x.com"))
	require.True(t, IsEmail("barista.one@kopi.co.id"))
	require.False(t, IsEmail("a@x"))
	require.False(t, IsEmail("ax.com"))
	require.False(t, IsEmail("a b@x.com"))
}

type account struct {
	id    string
	email string
}

func TestEmailTaken(t *testing.T) {
	items := []account{{id: "1", email: "a@x.com"}, {id: "2", email: "b@x.com"}}
	emailOf := func(a account) string { return a.email }
	idOf := func(a account) string { return a.id }

	require.True(t, EmailTaken(items, "a@x.com", "", emailOf, idOf), "new entity reusing an email")
	require.True(t, EmailTaken(items, " A@X.com ", "", emailOf, idOf), "case and whitespace are ignored")
	require.False(t, EmailTaken(items, "a@x.com", "1", emailOf, idOf), "editing the owner keeps its email")
	require.True(t, EmailTaken(items, "b@x.com", "1", emailOf, idOf), "editing into another user's email")
	require.False(t, EmailTaken(items, "c@x.com", "", emailOf, idOf))
	require.False(t, EmailTaken(items, "", "", emailOf, idOf))
}

type signupForm struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required,email_basic"`
	Phone    string `json:"phone_number" validate:"required,phone_id"`
	Password string `json:"password" validate:"required,strong_password"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	ok := signupForm{Name: "Sari", Email: "sari@kopi.id", Phone: "081234567890", Password: "Abcdef12!"}
	require.Nil(t, v.Struct(ok))
	require.NoError(t, v.Validate(ok))

	bad := signupForm{Name: "   ", Email: "sari", Phone: "12345", Password: "abcdefgh"}
	errs := v.Struct(bad)
	require.NotNil(t, errs)
	require.Equal(t, "is required", errs.Fields["name"])
	require.Equal(t, "must be a valid email", errs.Fields["email"])
	require.Contains(t, errs.Fields["phone_number"], "+62")
	require.Contains(t, errs.Fields["password"], "too weak")

	short := ok
	short.Password = "Ab1!"
	require.Equal(t, "must be at least 8 characters", v.Struct(short).Fields["password"])
}

func TestErrors(t *testing.T) {
	var e Errors
	require.True(t, e.Empty())
	require.NoError(t, e.Err())

	e.Add("email", "is already registered")
	e.Add("email", "must be a valid email")
	e.Add("age", "is required")
	require.Equal(t, "is already registered", e.Fields["email"])
	require.Equal(t, "validation failed: age is required; email is already registered", e.Error())
}

func TestFieldErrors_ClearAfterTouch(t *testing.T) {
	fe := NewFieldErrors(20 * time.Millisecond)
	fe.Replace(&Errors{Fields: map[string]string{"email": "must be a valid email", "name": "is required"}})

	fe.Touched("email")
	require.Eventually(t, func() bool {
		_, ok := fe.Snapshot()["email"]
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Untouched fields keep their error.
	require.Equal(t, "is required", fe.Snapshot()["name"])
}

func TestFieldErrors_ReplaceCancelsPendingClear(t *testing.T) {
	fe := NewFieldErrors(30 * time.Millisecond)
	fe.Replace(&Errors{Fields: map[string]string{"email": "old"}})
	fe.Touched("email")
	fe.Replace(&Errors{Fields: map[string]string{"email": "new"}})

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, "new", fe.Snapshot()["email"])
}

func TestFieldErrors_TouchUnknownFieldIsNoop(t *testing.T) {
	fe := NewFieldErrors(0)
	fe.Touched("phone_number")
	require.Empty(t, fe.Snapshot())
	fe.Stop()
}
