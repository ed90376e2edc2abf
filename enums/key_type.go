package enums

// KeyType mirrors the key container types of a license response.
type KeyType int64

const (
	KeyTypeSigning         KeyType = 1 // exactly one key of this type is expected
	KeyTypeContent         KeyType = 2
	KeyTypeKeyControl      KeyType = 3 // key control block for renewals, no key material
	KeyTypeOperatorSession KeyType = 4
	KeyTypeEntitlement     KeyType = 5
	KeyTypeOEMContent      KeyType = 6
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeSigning:
		return "SIGNING"
	case KeyTypeContent:
		return "CONTENT"
	case KeyTypeKeyControl:
		return "KEY_CONTROL"
	case KeyTypeOperatorSession:
		return "OPERATOR_SESSION"
	case KeyTypeEntitlement:
		return "ENTITLEMENT"
	case KeyTypeOEMContent:
		return "OEM_CONTENT"
	default:
		return "UNKNOWN"
	}
}
