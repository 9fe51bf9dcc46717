package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	encryptionPath = "META-INF/encryption.xml"
	fairPlayPath   = "META-INF/sinf.xml"
)

// fontObfuscation lists the algorithms that only mangle embedded fonts.
// Books using them stay readable.
var fontObfuscation = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

// drmSchemes maps namespace fragments found in the algorithm URI or the
// KeyInfo block to a scheme name for error messages.
var drmSchemes = []struct{ marker, name string }{
	{"http://ns.adobe.com/adept", "Adobe ADEPT"},
	{"http://readium.org/2014/01/lcp", "Readium LCP"},
}

type encryptionDoc struct {
	XMLName xml.Name        `xml:"encryption"`
	Data    []encryptedData `xml:"EncryptedData"`
}

type encryptedData struct {
	Method struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
	KeyInfo struct {
		Inner string `xml:",innerxml"`
	} `xml:"KeyInfo"`
	Target struct {
		URI string `xml:"URI,attr"`
	} `xml:"CipherData>CipherReference"`
}

// scheme names the DRM system protecting d, or "" when it is unknown.
func (d encryptedData) scheme() string {
	for _, s := range drmSchemes {
		if strings.Contains(d.Method.Algorithm, s.marker) || strings.Contains(d.KeyInfo.Inner, s.marker) {
			return s.name
		}
	}
	return ""
}

// checkDRM rejects archives whose content is encrypted. It reports whether
// embedded fonts are obfuscated, which is not an error.
func checkDRM(a *Archive) (fontsObfuscated bool, err error) {
	if a.Has(fairPlayPath) {
		return false, fmt.Errorf("epub: Apple FairPlay descriptor present: %w", ErrDRMProtected)
	}
	if !a.Has(encryptionPath) {
		return false, nil
	}
	data, err := a.ReadFile(encryptionPath)
	if err != nil {
		return false, err
	}

	var doc encryptionDoc
	if err := xml.Unmarshal(trimBOM(data), &doc); err != nil {
		return false, fmt.Errorf("epub: undecodable encryption.xml: %w", ErrDRMProtected)
	}
	for _, d := range doc.Data {
		if fontObfuscation[d.Method.Algorithm] {
			fontsObfuscated = true
			continue
		}
		if name := d.scheme(); name != "" {
			return false, fmt.Errorf("epub: %s protects %s: %w", name, d.Target.URI, ErrDRMProtected)
		}
		return false, fmt.Errorf("epub: %s encrypted with %q: %w", d.Target.URI, d.Method.Algorithm, ErrDRMProtected)
	}
	return fontsObfuscated, nil
}
