package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	config "github.com/anjiri1684/fundipay/configs"
)

const kcbBaseURL = "https://api.buni.kcbgroup.com/mm/api/request/1.0.0"

// BuniClient talks to the KCB Buni mobile-money API. It implements Gateway.
type BuniClient struct {
	http *http.Client
}

func NewBuniClient() *BuniClient {
	return &BuniClient{
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type stkPushRequest struct {
	PhoneNumber            string `json:"phoneNumber"`
	Amount                 string `json:"amount"`
	InvoiceNumber          string `json:"invoiceNumber"`
	SharedShortCode        bool   `json:"sharedShortCode"`
	OrgShortCode           string `json:"orgShortCode"`
	OrgPassKey             string `json:"orgPassKey"`
	CallbackURL            string `json:"callbackUrl"`
	TransactionDescription string `json:"transactionDescription"`
}

type stkPushResponse struct {
	Header struct {
		StatusCode        string `json:"statusCode"`
		StatusDescription string `json:"statusDescription"`
	} `json:"header"`
	Response struct {
		MerchantRequestID   string `json:"MerchantRequestID"`
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		CustomerMessage     string `json:"CustomerMessage"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
	} `json:"response"`
}

func (b *BuniClient) STKPush(phone string, amount float64, reference string) (*PushResult, error) {
	accessToken, err := GetKcbAccessToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get KCB access token: %v", err)
	}

	sanitizedPhone, err := SanitizeMpesaNumber(phone)
	if err != nil {
		return nil, err
	}

	callbackURL := config.Config("WEBHOOK_BASE_URL") + "/api/v1/payments/webhook"
	amountStr := strconv.FormatFloat(amount, 'f', 0, 64)

	kcbAccount := config.Config("KCB_ACCOUNT_NUMBER")
	if kcbAccount == "" {
		return nil, fmt.Errorf("KCB_ACCOUNT_NUMBER is not set in .env")
	}
	invoiceNumber := fmt.Sprintf("%s-%s", kcbAccount, reference)

	payload := stkPushRequest{
		PhoneNumber:            sanitizedPhone,
		Amount:                 amountStr,
		InvoiceNumber:          invoiceNumber,
		SharedShortCode:        true,
		CallbackURL:            callbackURL,
		TransactionDescription: config.Config("KCB_TRANSACTION_DESC"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal STK payload: %v", err)
	}

	req, err := http.NewRequest("POST", kcbBaseURL+"/stkpush", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create STK request: %v", err)
	}

	messageID := fmt.Sprintf("%s_%d", reference, time.Now().UnixNano())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("routeCode", config.Config("KCB_ROUTE_CODE"))
	req.Header.Set("operation", "STKPush")
	req.Header.Set("messageId", messageID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send STK request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read STK response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("KCB API Error: %s", string(respBody))
		return nil, fmt.Errorf("KCB Buni API returned non-200 status: %d", resp.StatusCode)
	}

	var stkResponse stkPushResponse
	if err := json.Unmarshal(respBody, &stkResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal STK response: %v", err)
	}

	if stkResponse.Response.ResponseCode != "0" {
		log.Printf("KCB STK Push initiation failed: %s", stkResponse.Response.ResponseDescription)
		return nil, fmt.Errorf("KCB STK Push failed: %s", stkResponse.Response.ResponseDescription)
	}

	log.Println("✅ STK Push initiated successfully for reference:", reference)
	return &PushResult{
		MerchantRequestID: stkResponse.Response.MerchantRequestID,
		CheckoutRequestID: stkResponse.Response.CheckoutRequestID,
		CustomerMessage:   stkResponse.Response.CustomerMessage,
		Raw:               string(respBody),
	}, nil
}

type disburseRequest struct {
	PhoneNumber     string `json:"phoneNumber"`
	Amount          string `json:"amount"`
	InvoiceNumber   string `json:"invoiceNumber"`
	SharedShortCode bool   `json:"sharedShortCode"`
	OrgShortCode    string `json:"orgShortCode"`
	TransactionDesc string `json:"transactionDescription"`
}

type disburseResponse struct {
	Header struct {
		StatusCode        string `json:"statusCode"`
		StatusDescription string `json:"statusDescription"`
	} `json:"header"`
	Response struct {
		TransactionID       string `json:"TransactionID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
	} `json:"response"`
}

// Disburse pushes money to a worker's M-Pesa number (B2C leg). No customer
// interaction is involved; a declined or errored call is simply retried by
// the payout queue.
func (b *BuniClient) Disburse(phone string, amount float64, reference string) (*DisburseResult, error) {
	accessToken, err := GetKcbAccessToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get KCB access token: %v", err)
	}

	sanitizedPhone, err := SanitizeMpesaNumber(phone)
	if err != nil {
		return nil, err
	}

	payload := disburseRequest{
		PhoneNumber:     sanitizedPhone,
		Amount:          strconv.FormatFloat(amount, 'f', 0, 64),
		InvoiceNumber:   reference,
		SharedShortCode: true,
		TransactionDesc: config.Config("KCB_PAYOUT_DESC"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal disbursement payload: %v", err)
	}

	req, err := http.NewRequest("POST", kcbBaseURL+"/fundstransfer", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create disbursement request: %v", err)
	}

	messageID := fmt.Sprintf("%s_%d", reference, time.Now().UnixNano())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("routeCode", config.Config("KCB_ROUTE_CODE"))
	req.Header.Set("operation", "FundsTransfer")
	req.Header.Set("messageId", messageID)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send disbursement request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read disbursement response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("KCB API Error: %s", string(respBody))
		return nil, fmt.Errorf("KCB Buni API returned non-200 status: %d", resp.StatusCode)
	}

	var dr disburseResponse
	if err := json.Unmarshal(respBody, &dr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal disbursement response: %v", err)
	}

	if dr.Response.ResponseCode != "0" {
		log.Printf("KCB disbursement failed: %s", dr.Response.ResponseDescription)
		return nil, fmt.Errorf("KCB disbursement failed: %s", dr.Response.ResponseDescription)
	}

	log.Println("✅ Disbursement accepted for reference:", reference)
	return &DisburseResult{DisbursementID: dr.Response.TransactionID}, nil
}
