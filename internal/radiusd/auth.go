package radiusd

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net"
	"strings"
	"time"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"

	"github.com/proisp/radiusd/internal/radiusproto"
	"github.com/proisp/radiusd/internal/store"
)

// handleAuth implements the Idle -> Decoded -> MethodSelected ->
// Verified{Accept|Reject} -> Sent state machine: method selection in
// preference order MS-CHAPv2, MS-CHAP, CHAP, PAP, then reject.
func (s *Server) handleAuth(w radius.ResponseWriter, r *radius.Request) {
	originalUsername := rfc2865.UserName_GetString(r.Packet)
	callingStationID := rfc2865.CallingStationID_GetString(r.Packet)

	nasIP, _, _ := net.SplitHostPort(r.RemoteAddr.String())
	username := s.stripRealmIfAllowed(originalUsername, nasIP)

	logf := s.log.WithFields(map[string]interface{}{
		"component": "radiusd.auth",
		"username":  username,
		"nas":       nasIP,
	})

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		logf.Info("access-reject: user not found")
		s.reject(w, r, originalUsername)
		return
	}
	if !user.IsActive {
		logf.Info("access-reject: user inactive")
		s.reject(w, r, originalUsername)
		return
	}
	if user.IsExpired() {
		logf.Info("access-reject: user expired")
		s.reject(w, r, originalUsername)
		return
	}

	ok, mschap2Success := s.verify(r.Packet, originalUsername, user)
	if !ok {
		logf.Info("access-reject: verification failed")
		s.reject(w, r, originalUsername)
		return
	}

	if mac := normalizeMAC(callingStationID); mac != "" && user.MACAddress != "" {
		if normalizeMAC(user.MACAddress) != mac {
			logf.WithField("calling_station_id", callingStationID).Info("access-reject: MAC mismatch")
			s.reject(w, r, originalUsername)
			return
		}
	} else if mac != "" && user.MACAddress == "" {
		go func() {
			if err := s.store.SaveMAC(username, callingStationID); err != nil {
				logf.WithError(err).Warn("failed to save sticky MAC binding")
			}
		}()
	}

	s.accept(w, r, originalUsername, user, mschap2Success)
	logf.Info("access-accept")
}

// verify dispatches to the method matching the decoded attribute set and
// reports whether the credential check passed. mschap2Success is non-nil
// only when MS-CHAPv2 succeeded, carrying the MS-CHAP2-Success VSA payload
// the caller must echo in the Access-Accept.
func (s *Server) verify(p *radius.Packet, username string, user *store.User) (bool, []byte) {
	mschapChallenge := radiusproto.GetVendorAttr(p, radiusproto.VendorMicrosoft, radiusproto.MSCHAPChallenge)
	mschap2Response := radiusproto.GetVendorAttr(p, radiusproto.VendorMicrosoft, radiusproto.MSCHAP2Response)
	mschapResponse := radiusproto.GetVendorAttr(p, radiusproto.VendorMicrosoft, radiusproto.MSCHAPResponse)
	chapPassword := radiusproto.GetAttr(p, 3)

	switch {
	case len(mschapChallenge) > 0 && len(mschap2Response) >= 50:
		s.log.WithField("method", radiusproto.VendorAttributeName(radiusproto.VendorMicrosoft, radiusproto.MSCHAP2Response)).Debug("auth method selected")
		return s.verifyMSCHAPv2(mschapChallenge, mschap2Response, username, user)
	case len(mschapChallenge) > 0 && len(mschapResponse) >= 50:
		s.log.WithField("method", radiusproto.VendorAttributeName(radiusproto.VendorMicrosoft, radiusproto.MSCHAPResponse)).Debug("auth method selected")
		return s.verifyMSCHAP(mschapChallenge, mschapResponse, user), nil
	case chapPassword != nil:
		s.log.WithField("method", radiusproto.AttributeName(3)).Debug("auth method selected")
		return s.verifyCHAP(p, chapPassword, user), nil
	case radiusproto.GetAttr(p, 2) != nil:
		s.log.WithField("method", radiusproto.AttributeName(2)).Debug("auth method selected")
		return rfc2865.UserPassword_GetString(p) == user.Password, nil
	default:
		return false, nil
	}
}

func (s *Server) verifyMSCHAPv2(challenge, response []byte, username string, user *store.User) (bool, []byte) {
	if user.Password == "" {
		return false, nil
	}
	peerChallenge := response[2:18]
	ntResponse := response[26:50]

	expected := radiusproto.NTResponse(challenge, peerChallenge, username, user.Password)
	if !bytes.Equal(expected, ntResponse) {
		return false, nil
	}

	authResp := radiusproto.AuthenticatorResponse(user.Password, ntResponse, peerChallenge, challenge, username)
	payload := append([]byte{response[0]}, []byte("S="+strings.ToUpper(hex.EncodeToString(authResp)))...)
	return true, payload
}

func (s *Server) verifyMSCHAP(challenge, response []byte, user *store.User) bool {
	ntHash := user.NTHash
	if len(ntHash) != 16 {
		if user.Password == "" {
			return false
		}
		ntHash = radiusproto.NTHash(user.Password)
	}
	if len(challenge) != 8 || len(response) < 50 {
		return false
	}
	ntResponse := response[26:50]
	expected := radiusproto.DesEncrypt3(ntHash, challenge)
	return bytes.Equal(expected, ntResponse)
}

func (s *Server) verifyCHAP(p *radius.Packet, chapPassword []byte, user *store.User) bool {
	if len(chapPassword) != 17 || user.Password == "" {
		return false
	}
	ident := chapPassword[0]
	hash := chapPassword[1:17]

	challenge := radiusproto.GetAttr(p, 60)
	if challenge == nil {
		challenge = p.Authenticator[:]
	}

	h := md5.New()
	h.Write([]byte{ident})
	h.Write([]byte(user.Password))
	h.Write(challenge)
	return bytes.Equal(h.Sum(nil), hash)
}

// accept builds and sends an Access-Accept carrying the user's profile
// attributes and, when MS-CHAPv2 was used, the MS-CHAP2-Success VSA.
func (s *Server) accept(w radius.ResponseWriter, r *radius.Request, originalUsername string, user *store.User, mschap2Success []byte) {
	response := r.Response(radius.CodeAccessAccept)
	rfc2865.UserName_SetString(response, originalUsername)

	profile, err := s.store.GetProfileByName(user.ProfileName)
	if err != nil {
		profile = nil
	}

	if user.ProfileName != "default" {
		response.Add(11, []byte(user.ProfileName)) // Filter-Id
		response.Add(26, radiusproto.BuildVSA(radiusproto.VendorMikrotik, radiusproto.MikrotikGroup, []byte(user.ProfileName)))
	}

	if profile != nil {
		if profile.RateLimit != "" {
			response.Add(26, radiusproto.BuildVSA(radiusproto.VendorMikrotik, radiusproto.MikrotikRateLimit, []byte(profile.RateLimit)))
		}
		if profile.SessionTimeoutSecs != nil {
			timeout := *profile.SessionTimeoutSecs
			if user.ExpiresAt != nil {
				if remaining := int(time.Until(*user.ExpiresAt).Seconds()); remaining > 0 && remaining < timeout {
					timeout = remaining
				}
			}
			if timeout > 0 {
				rfc2865.SessionTimeout_Set(response, rfc2865.SessionTimeout(timeout))
			}
		}
		if profile.IdleTimeoutSecs != nil && *profile.IdleTimeoutSecs > 0 {
			rfc2865.IdleTimeout_Set(response, rfc2865.IdleTimeout(*profile.IdleTimeoutSecs))
		}
	}

	if len(mschap2Success) > 0 {
		response.Add(26, radiusproto.BuildVSA(radiusproto.VendorMicrosoft, radiusproto.MSCHAP2Success, mschap2Success))
	}

	w.Write(response)
}

// reject sends an Access-Reject carrying only the echoed User-Name, per
// spec: no diagnostic attributes leak rejection reasons to the NAS.
func (s *Server) reject(w radius.ResponseWriter, r *radius.Request, originalUsername string) {
	response := r.Response(radius.CodeAccessReject)
	rfc2865.UserName_SetString(response, originalUsername)
	w.Write(response)
}

// stripRealmIfAllowed strips a user@realm suffix when the NAS at nasIP has
// configured that realm in its allowed_realms list. MS-CHAPv2's
// ChallengeHash still uses the original, un-stripped username since that
// is what the client itself used to compute its response.
func (s *Server) stripRealmIfAllowed(username, nasIP string) string {
	at := strings.LastIndex(username, "@")
	if at < 0 {
		return username
	}
	user, realm := username[:at], strings.ToLower(username[at+1:])

	nas, err := s.store.GetNASBySourceIP(nasIP)
	if err != nil || nas.AllowedRealms == "" {
		return username
	}
	for _, allowed := range strings.Split(nas.AllowedRealms, ",") {
		if strings.TrimSpace(strings.ToLower(allowed)) == realm {
			return user
		}
	}
	return username
}

func normalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}
