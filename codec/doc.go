// Package codec converts values that JSON cannot represent natively into a
// JSON-safe form and back.
//
// The live document tree keeps native Go values (byte slices, callables,
// times, civil dates and arbitrary-precision decimals). They are only turned
// into JSON primitives when a document is serialized:
//
//   - *apd.Decimal      -> float64
//   - time.Time         -> RFC 3339 string (or Options.EncodeDatetime)
//   - Date              -> YYYY-MM-DD (or Options.EncodeDate)
//   - func values       -> "__callable__: <base64>" through a CallableCodec
//   - non-textual bytes -> "__binary__: <base64>"
//   - textual bytes     -> string
//
// DecodeScalar reverses the two marker encodings. Both directions are pure
// functions of their input and Options.
package codec
