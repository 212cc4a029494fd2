package auth

// Authorize allows claims when required is empty or claims.Role is one of
// required.
func Authorize(claims Claims, required ...Role) error {
	if len(required) == 0 {
		return nil
	}
	if claims.Role.In(required...) {
		return nil
	}
	return ErrForbidden
}

// AuthorizeOwner allows privileged roles and the owner of targetID.
func AuthorizeOwner(claims Claims, targetID string, privileged ...Role) error {
	if claims.Role.In(privileged...) {
		return nil
	}
	if claims.UserID != "" && claims.UserID == targetID {
		return nil
	}
	return ErrForbidden
}
