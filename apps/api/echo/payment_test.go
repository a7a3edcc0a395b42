package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/user"
)

const receiptPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func newMultipartRequest(t *testing.T, path, token string, fields map[string]string, fileField, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPaymentApi_SubmitAndVerify(t *testing.T) {
	app := newTestApp(t)
	student := app.createStudent(t, "NSR/0001/17")
	registrar := app.createUser(t, "registrar", user.RoleRegistrar)
	token := app.getToken(t, student)

	fields := map[string]string{
		"semester": "1", "year": "2017", "amount": "3500",
		"method": "bank transfer", "reference": "TRX-0042",
	}

	// the receipt file is mandatory
	rec := app.do(newMultipartRequest(t, "/v1/payments", token, fields, "", "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(newMultipartRequest(t, "/v1/payments", token, fields, "receipt", "receipt.pdf", receiptPDF))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var p payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.NotEmpty(t, p.ReceiptPath)

	// the stored receipt streams back through the file endpoint
	rec = app.do(newAuthRequest(http.MethodGet, "/v1/files/"+p.ReceiptPath, token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, receiptPDF, rec.Body.String())

	// registrars see it in the verification queue
	rec = app.do(newAuthRequest(http.MethodGet, "/v1/payments/pending", app.getToken(t, registrar)))
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	// students cannot reach the queue
	rec = app.do(newAuthRequest(http.MethodGet, "/v1/payments/pending", token))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	verify := marshallObj(t, payment.VerifyRequest{Status: "verified"})
	rec = app.do(newAuthRequest(http.MethodPost, "/v1/payments/"+p.ID+"/verify", app.getToken(t, registrar), verify))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, payment.StatusVerified, p.Status)

	// the student's account now carries the verified flag
	usr, err := app.usrSvc.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PaymentVerified, usr.PaymentStatus)

	rec = app.do(newAuthRequest(http.MethodGet, "/v1/payments/mine", token))
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)
}

func TestPaymentApi_RejectRequiresReason(t *testing.T) {
	app := newTestApp(t)
	student := app.createStudent(t, "NSR/0001/17")
	registrar := app.createUser(t, "registrar", user.RoleRegistrar)

	rec := app.do(newMultipartRequest(t, "/v1/payments", app.getToken(t, student), map[string]string{
		"semester": "1", "year": "2017", "amount": "3500", "method": "bank transfer",
	}, "receipt", "receipt.pdf", receiptPDF))
	require.Equal(t, http.StatusCreated, rec.Code)
	var p payment.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))

	rec = app.do(newAuthRequest(http.MethodPost, "/v1/payments/"+p.ID+"/verify", app.getToken(t, registrar),
		marshallObj(t, payment.VerifyRequest{Status: "rejected"})))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(newAuthRequest(http.MethodPost, "/v1/payments/"+p.ID+"/verify", app.getToken(t, registrar),
		marshallObj(t, payment.VerifyRequest{Status: "rejected", Reason: "illegible receipt"})))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, payment.StatusRejected, p.Status)
}
