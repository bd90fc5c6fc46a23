package infra

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// recordAAD は記録本文の暗号化に紐付ける追加認証データ。
// 別用途で同じ鍵を使って暗号化されたデータは復号できない。
var recordAAD = []byte("access-error-record/v1")

var crc32c = crc32.MakeTable(crc32.Castagnoli)

// ErrKMSIntegrity はKMSとの通信でデータが破損したことを示す。
var ErrKMSIntegrity = errors.New("KMS response failed integrity check")

// KMSSealer はCloud KMSで記録本文を暗号化/復号する。
type KMSSealer struct {
	client  *kms.KeyManagementClient
	keyName string
}

// NewKMSSealer は KMS_KEY_NAME で指定された鍵を使うKMSSealerを生成する。
func NewKMSSealer(ctx context.Context, keyName string) (*KMSSealer, error) {
	if keyName == "" {
		return nil, fmt.Errorf("KMS key name is required")
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}
	return &KMSSealer{client: client, keyName: keyName}, nil
}

func checksum(b []byte) int64 {
	return int64(crc32.Checksum(b, crc32c))
}

// Encrypt は記録本文を暗号化する。送受信データはCRC32Cで検証する。
func (s *KMSSealer) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	resp, err := s.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:                              s.keyName,
		Plaintext:                         plaintext,
		PlaintextCrc32C:                   wrapperspb.Int64(checksum(plaintext)),
		AdditionalAuthenticatedData:       recordAAD,
		AdditionalAuthenticatedDataCrc32C: wrapperspb.Int64(checksum(recordAAD)),
	})
	if err != nil {
		return nil, fmt.Errorf("encrypting record: %w", err)
	}
	if !resp.VerifiedPlaintextCrc32C || !resp.VerifiedAdditionalAuthenticatedDataCrc32C {
		return nil, fmt.Errorf("%w: request corrupted in transit", ErrKMSIntegrity)
	}
	if resp.CiphertextCrc32C == nil || resp.CiphertextCrc32C.Value != checksum(resp.Ciphertext) {
		return nil, fmt.Errorf("%w: ciphertext corrupted in transit", ErrKMSIntegrity)
	}
	return resp.Ciphertext, nil
}

// Decrypt は暗号化された記録本文を復号する。
func (s *KMSSealer) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	resp, err := s.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:                              s.keyName,
		Ciphertext:                        ciphertext,
		CiphertextCrc32C:                  wrapperspb.Int64(checksum(ciphertext)),
		AdditionalAuthenticatedData:       recordAAD,
		AdditionalAuthenticatedDataCrc32C: wrapperspb.Int64(checksum(recordAAD)),
	})
	if err != nil {
		return nil, fmt.Errorf("decrypting record: %w", err)
	}
	if resp.PlaintextCrc32C == nil || resp.PlaintextCrc32C.Value != checksum(resp.Plaintext) {
		return nil, fmt.Errorf("%w: plaintext corrupted in transit", ErrKMSIntegrity)
	}
	return resp.Plaintext, nil
}

// Close はKMSクライアントを閉じる。
func (s *KMSSealer) Close() error {
	return s.client.Close()
}
