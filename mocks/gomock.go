package mocks

//go:generate mockgen -source=./../signer/participant.go -destination=./signerMocks/service_mock.go -package=signerMocks
//go:generate mockgen -source=./../coordinator/client.go -destination=./coordinatorMocks/signer_client_mock.go -package=coordinatorMocks
//go:generate mockgen -source=./../ledger/client.go -destination=./ledgerMocks/client_mock.go -package=ledgerMocks
//go:generate mockgen -source=./../qr/qr.go -destination=./qrMocks/qr_mock.go -package=qrMocks
