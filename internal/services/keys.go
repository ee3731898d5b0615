package services

// Key layout of the persisted records. One hash per link, one list of
// JSON scan events per link, one set of unique-visitor keys per link,
// and a single global id set used as the listing index because the
// capability interface offers no prefix scan.

const keyAllIDs = "qr:ids"

func keyLink(id string) string    { return "qr:" + id }
func keyScans(id string) string   { return "qr:" + id + ":scans" }
func keyUniques(id string) string { return "qr:" + id + ":uniques" }
