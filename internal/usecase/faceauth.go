// Package usecase implements the enrollment, verification and
// revocation workflows over the detection and matching pipeline.
package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/face-gate/internal/blobstore"
	"github.com/example/face-gate/internal/detect"
	"github.com/example/face-gate/internal/imaging"
	"github.com/example/face-gate/internal/logging"
	"github.com/example/face-gate/internal/match"
	"github.com/example/face-gate/internal/registry"
)

// IdentityRegistry is the narrow persistence surface the workflows
// need from the identity store.
type IdentityRegistry interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateEnrollment(ctx context.Context, username, blobKey string) (*registry.Enrollment, error)
	FindByLoginID(ctx context.Context, loginID string) (*registry.Enrollment, error)
	DeleteIdentity(ctx context.Context, identityID uint) error
}

// FaceAuthUseCase sequences the decode, detect, gate and match stages
// with the identity registry and the blob store.
type FaceAuthUseCase struct {
	registry IdentityRegistry
	blobs    blobstore.Store
	locator  detect.Locator
	logger   *zap.Logger
}

// NewFaceAuthUseCase constructs a new use case instance.
func NewFaceAuthUseCase(reg IdentityRegistry, blobs blobstore.Store, locator detect.Locator, logger *zap.Logger) *FaceAuthUseCase {
	return &FaceAuthUseCase{
		registry: reg,
		blobs:    blobs,
		locator:  locator,
		logger:   logger.Named("faceauth_usecase"),
	}
}

// Enroll registers a new identity from a username and a face photo.
// On success the returned outcome carries the generated login id.
func (uc *FaceAuthUseCase) Enroll(ctx context.Context, username, payload string) *Outcome {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.enroll", requestID)

	if username == "" || payload == "" {
		return fail(CodeMissingInput, "There is no face image or username.")
	}

	img, err := imaging.DecodePayload(payload)
	if err != nil {
		opLogger.Warn("payload decode failed", zap.Error(err))
		return fail(CodeDecodeError, "The image could not be read. Please capture again.")
	}

	face, _, outcome := uc.detectSingleFace(opLogger, img)
	if outcome != nil {
		return outcome
	}

	// Advisory fast-path check; the registry's unique index is the
	// authority when two enrollments race on the same username.
	taken, err := uc.registry.UsernameTaken(ctx, username)
	if err != nil {
		opLogger.Error("username pre-check failed",
			zap.Error(logging.NewOperationError("registry.username_taken", requestID, err)))
		return fail(CodeStorageError, "Registration is temporarily unavailable. Please try again.")
	}
	if taken {
		return fail(CodeDuplicateUsername, "This user name is already registered. Please choose another one.")
	}

	crop := imaging.Crop(img, face.Rect())
	encoded, err := imaging.EncodeJPEG(crop)
	if err != nil {
		opLogger.Error("crop encode failed", zap.Error(err))
		return fail(CodeEncodingError, "Face did not save properly. Please try again.")
	}

	blobKey := uuid.NewString()
	if err := uc.blobs.Put(ctx, blobKey, encoded); err != nil {
		opLogger.Error("crop store failed",
			zap.Error(logging.NewOperationError("blobstore.put", requestID, err)))
		return fail(CodeStorageError, "Face did not save properly. Please try again.")
	}

	enrollment, err := uc.registry.CreateEnrollment(ctx, username, blobKey)
	if err != nil {
		// The crop was stored before the registry write; remove it so
		// a failed enrollment leaves no partial state behind.
		if delErr := uc.blobs.Delete(ctx, blobKey); delErr != nil {
			opLogger.Warn("orphaned crop cleanup failed",
				zap.String("blob_key", blobKey), zap.Error(delErr))
		}
		if errors.Is(err, registry.ErrDuplicateUsername) {
			return fail(CodeDuplicateUsername, "This user name is already registered. Please choose another one.")
		}
		opLogger.Error("enrollment create failed",
			zap.Error(logging.NewOperationError("registry.create_enrollment", requestID, err)))
		return fail(CodeStorageError, "Registration is temporarily unavailable. Please try again.")
	}

	opLogger.Info("enrollment complete",
		zap.String("username", username), zap.String("login_id", enrollment.LoginID))

	out := succeed(fmt.Sprintf(
		"Your photo was captured successfully! Your Login ID is %s. Please copy it for future logins.",
		enrollment.LoginID))
	out.LoginID = enrollment.LoginID
	out.Redirect = "/login/"
	return out
}

// Verify decides whether a fresh photo belongs to the enrolled face
// behind a login id. The numeric similarity score is never disclosed
// to the caller.
func (uc *FaceAuthUseCase) Verify(ctx context.Context, username, loginID, payload string) *Outcome {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify", requestID)

	if username == "" || loginID == "" || payload == "" {
		return fail(CodeMissingInput, "Username, Login ID or face image is missing.")
	}

	enrollment, outcome := uc.lookupEnrollment(ctx, opLogger, username, loginID,
		"Invalid Login ID. Please enter a correct ID.",
		"Username and Login ID do not match.")
	if outcome != nil {
		return outcome
	}

	img, err := imaging.DecodePayload(payload)
	if err != nil {
		opLogger.Warn("payload decode failed", zap.Error(err))
		return fail(CodeDecodeError, "The image could not be read. Try again.")
	}

	face, gray, outcome := uc.detectSingleFace(opLogger, img)
	if outcome != nil {
		return outcome
	}

	stored, err := uc.blobs.Get(ctx, enrollment.BlobKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return fail(CodeStoredImageUnavailable, "The stored face image could not be loaded.")
		}
		opLogger.Error("stored crop fetch failed",
			zap.Error(logging.NewOperationError("blobstore.get", requestID, err)))
		return fail(CodeStorageError, "Login is temporarily unavailable. Please try again.")
	}

	storedImg, _, err := image.Decode(bytes.NewReader(stored))
	if err != nil {
		opLogger.Error("stored crop decode failed", zap.Error(err))
		return fail(CodeStoredImageUnavailable, "The stored face image could not be loaded.")
	}

	submitted := imaging.CropGray(gray, face.Rect())
	score, ok := match.Matches(submitted, imaging.Grayscale(storedImg))
	opLogger.Info("face comparison complete",
		zap.String("login_id", loginID), zap.Float64("score", score), zap.Bool("match", ok))
	if !ok {
		return fail(CodeFaceMismatch, "The faces did not match. Look straight into the camera and try again in good light.")
	}

	out := succeed(fmt.Sprintf("Login successful! Welcome %s.", username))
	out.LoginID = loginID
	out.Redirect = "/dashboard/"
	return out
}

// Revoke deletes an identity, its enrollment and the stored face crop.
func (uc *FaceAuthUseCase) Revoke(ctx context.Context, username, loginID string) *Outcome {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.revoke", requestID)

	if username == "" || loginID == "" {
		return fail(CodeMissingInput, "Both username and login ID are required.")
	}

	enrollment, outcome := uc.lookupEnrollment(ctx, opLogger, username, loginID,
		"Invalid login ID. No user found.",
		"Username and login ID do not match. Deletion is not allowed.")
	if outcome != nil {
		return outcome
	}

	// Best effort: a missing blob must not block revocation.
	if err := uc.blobs.Delete(ctx, enrollment.BlobKey); err != nil {
		opLogger.Warn("stored crop delete failed",
			zap.String("blob_key", enrollment.BlobKey), zap.Error(err))
	}

	if err := uc.registry.DeleteIdentity(ctx, enrollment.IdentityID); err != nil {
		opLogger.Error("identity delete failed",
			zap.Error(logging.NewOperationError("registry.delete_identity", requestID, err)))
		return fail(CodeStorageError, "Deletion is temporarily unavailable. Please try again.")
	}

	opLogger.Info("enrollment revoked",
		zap.String("username", username), zap.String("login_id", loginID))

	return succeed(fmt.Sprintf(
		"User %q (ID: %s) and the stored face were removed from the system.", username, loginID))
}

// lookupEnrollment resolves a login id and checks the username claim.
// The username check runs before any image work so a mismatch can
// never leak whether the face would have matched.
func (uc *FaceAuthUseCase) lookupEnrollment(ctx context.Context, opLogger *zap.Logger, username, loginID, unknownMsg, mismatchMsg string) (*registry.Enrollment, *Outcome) {
	enrollment, err := uc.registry.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fail(CodeUnknownLoginID, unknownMsg)
		}
		opLogger.Error("enrollment lookup failed", zap.Error(err))
		return nil, fail(CodeStorageError, "The service is temporarily unavailable. Please try again.")
	}

	if enrollment.Identity.Username != username {
		return nil, fail(CodeIdentityMismatch, mismatchMsg)
	}
	return enrollment, nil
}

// detectSingleFace runs the locator over the grayscale frame and
// applies the quality gate. It returns the accepted box and the
// grayscale buffer, or the outcome that terminates the workflow.
func (uc *FaceAuthUseCase) detectSingleFace(opLogger *zap.Logger, img image.Image) (detect.Box, *image.Gray, *Outcome) {
	gray := imaging.Grayscale(img)

	boxes, err := uc.locator.Locate(gray)
	if err != nil {
		opLogger.Error("face detection failed", zap.Error(err))
		return detect.Box{}, nil, fail(CodeDetectorUnavailable, "Face detection model could not be loaded.")
	}

	bounds := gray.Bounds()
	face, err := detect.SelectFace(boxes, bounds.Dx(), bounds.Dy())
	if err != nil {
		switch {
		case errors.Is(err, detect.ErrNoFace):
			return detect.Box{}, nil, fail(CodeNoFaceDetected, "No face detected. Move closer to the camera and look straight ahead.")
		case errors.Is(err, detect.ErrMultipleFaces):
			return detect.Box{}, nil, fail(CodeMultipleFacesDetected, "Multiple faces detected. Only one person should be in front of the camera.")
		default:
			return detect.Box{}, nil, fail(CodeFaceTooDistant, "The face is too distant. Get closer to the camera and try again.")
		}
	}
	return face, gray, nil
}
