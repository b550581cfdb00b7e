package socks

import (
	"errors"
	"fmt"
)

// Kind classifies a protocol failure onto the handful of transport-level
// categories a caller already knows how to react to, mirroring the way
// net.OpError and io.ErrorKind-style code groups errors that arrive with
// much richer, protocol-specific detail underneath.
type Kind int

const (
	KindOther Kind = iota
	KindInvalidInput
	KindInvalidData
	KindConnectionRefused
	KindConnectionAborted
	KindInterrupted
	KindUnsupported
	KindPermissionDenied
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid-input"
	case KindInvalidData:
		return "invalid-data"
	case KindConnectionRefused:
		return "connection-refused"
	case KindConnectionAborted:
		return "connection-aborted"
	case KindInterrupted:
		return "interrupted"
	case KindUnsupported:
		return "unsupported"
	case KindPermissionDenied:
		return "permission-denied"
	default:
		return "other"
	}
}

// Variant is the protocol-level discriminant carried by an *Error. Equality
// between two *Error values compares the variant discriminant only, never
// the attached fields, so tests can assert "any InvalidUsername" without
// spelling out the username that triggered it.
type Variant int

const (
	ErrInvalidSocksAddress Variant = iota
	ErrInvalidPortValue
	ErrNoResolveSocketAddrs
	ErrInvalidResponseVersion
	ErrUnknownResponseCode
	ErrConnectionRefused
	ErrRejectedRequestID
	ErrSocks4NoIPv6
	ErrMalformedDomain
	ErrSocks5InvalidAddressType
	ErrUnknownServerFailure
	ErrServerRefusedByRuleSet
	ErrServerNetworkUnreachable
	ErrServerHostUnreachable
	ErrServerTTLExpired
	ErrServerCmdNotSupported
	ErrServerAddressNotSupported
	ErrInvalidReservedByte
	ErrInvalidDomainLength
	ErrNoAuthMethods
	ErrUnknownAuthMethod
	ErrInvalidUsername
	ErrInvalidPassword
	ErrFailedPasswordAuth
	ErrInvalidReservedBytes
	ErrInvalidFragmentID
	ErrWinUDP4GiBLimit
)

var variantNames = map[Variant]string{
	ErrInvalidSocksAddress:       "InvalidSocksAddress",
	ErrInvalidPortValue:          "InvalidPortValue",
	ErrNoResolveSocketAddrs:      "NoResolveSocketAddrs",
	ErrInvalidResponseVersion:    "InvalidResponseVersion",
	ErrUnknownResponseCode:       "UnknownResponseCode",
	ErrConnectionRefused:         "ConnectionRefused",
	ErrRejectedRequestID:         "RejectedRequestID",
	ErrSocks4NoIPv6:              "Socks4NoIPv6",
	ErrMalformedDomain:           "MalformedDomain",
	ErrSocks5InvalidAddressType:  "SOCKS5InvalidAddressType",
	ErrUnknownServerFailure:      "UnknownServerFailure",
	ErrServerRefusedByRuleSet:    "ServerRefusedByRuleSet",
	ErrServerNetworkUnreachable:  "ServerNetworkUnreachable",
	ErrServerHostUnreachable:     "ServerHostUnreachable",
	ErrServerTTLExpired:          "ServerTTLExpired",
	ErrServerCmdNotSupported:     "ServerCmdNotSupported",
	ErrServerAddressNotSupported: "ServerAddressNotSupported",
	ErrInvalidReservedByte:       "InvalidReservedByte",
	ErrInvalidDomainLength:       "InvalidDomainLength",
	ErrNoAuthMethods:             "NoAuthMethods",
	ErrUnknownAuthMethod:         "UnknownAuthMethod",
	ErrInvalidUsername:           "InvalidUsername",
	ErrInvalidPassword:           "InvalidPassword",
	ErrFailedPasswordAuth:        "FailedPasswordAuth",
	ErrInvalidReservedBytes:      "InvalidReservedBytes",
	ErrInvalidFragmentID:         "InvalidFragmentID",
	ErrWinUDP4GiBLimit:           "WinUDP4GiBLimit",
}

var variantKind = map[Variant]Kind{
	ErrInvalidSocksAddress:       KindInvalidInput,
	ErrInvalidPortValue:          KindInvalidInput,
	ErrNoResolveSocketAddrs:      KindInvalidInput,
	ErrSocks4NoIPv6:              KindInvalidInput,
	ErrInvalidDomainLength:       KindInvalidInput,
	ErrInvalidUsername:           KindInvalidInput,
	ErrInvalidPassword:           KindInvalidInput,
	ErrWinUDP4GiBLimit:           KindInvalidInput,
	ErrInvalidResponseVersion:    KindInvalidData,
	ErrMalformedDomain:           KindInvalidData,
	ErrSocks5InvalidAddressType:  KindInvalidData,
	ErrInvalidReservedByte:       KindInvalidData,
	ErrInvalidReservedBytes:      KindInvalidData,
	ErrInvalidFragmentID:         KindInvalidData,
	ErrUnknownResponseCode:       KindOther,
	ErrUnknownServerFailure:      KindOther,
	ErrConnectionRefused:         KindConnectionRefused,
	ErrServerRefusedByRuleSet:    KindConnectionRefused,
	ErrServerNetworkUnreachable:  KindConnectionAborted,
	ErrServerHostUnreachable:     KindConnectionAborted,
	ErrServerTTLExpired:          KindInterrupted,
	ErrServerCmdNotSupported:     KindUnsupported,
	ErrServerAddressNotSupported: KindUnsupported,
	ErrNoAuthMethods:             KindUnsupported,
	ErrUnknownAuthMethod:         KindUnsupported,
	ErrRejectedRequestID:         KindPermissionDenied,
	ErrFailedPasswordAuth:        KindPermissionDenied,
}

// Error is the protocol-error value this library returns. It satisfies
// the error interface on its own and wraps no other error: errors.Is
// matches it only against another *Error (see Is), errors.As and AsError
// recover it from a wrapping chain, and Kind reports its transport-level
// category.
type Error struct {
	Variant Variant
	Code    byte   // the server-supplied code byte, when the variant is code-derived
	Detail  string // free-form context, e.g. the offending length or address text
}

func newError(v Variant, detail string) *Error {
	return &Error{Variant: v, Detail: detail}
}

func newCodeError(v Variant, code byte, detail string) *Error {
	return &Error{Variant: v, Code: code, Detail: detail}
}

func (e *Error) Error() string {
	name := variantNames[e.Variant]
	if e.Detail == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, e.Detail)
}

// Kind maps the protocol variant onto its transport-level category per
// the table every engine in this package is built against.
func (e *Error) Kind() Kind {
	if k, ok := variantKind[e.Variant]; ok {
		return k
	}
	return KindOther
}

// Is makes errors.Is(err, &Error{Variant: X}) compare discriminants only,
// ignoring Code and Detail — deliberate, so test assertions stay terse.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Variant == t.Variant
}

// AsError downcasts a generic error into the protocol-specific *Error
// carried underneath, the way a caller unwraps an io.Error looking for
// the embedded cause.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsProtocolError reports whether err (or something it wraps) is an
// *Error from this package, as opposed to a bare transport failure.
func IsProtocolError(err error) bool {
	_, ok := AsError(err)
	return ok
}
